package config

import (
	"gopkg.in/yaml.v3"
)

// Dyndllfile represents the structure of the dyndll.yaml configuration file.
type Dyndllfile struct {
	Root       string         `yaml:"root"`
	Name       string         `yaml:"name"`
	Filename   string         `yaml:"filename"`
	PublicPath string         `yaml:"publicPath"`
	Sources    []string       `yaml:"sources"`
	Include    []string       `yaml:"include"`
	Exclude    []string       `yaml:"exclude"`
	Shared     map[string]any `yaml:"shared"`
	Debounce   string         `yaml:"debounce"`
	Listen     string         `yaml:"listen"`
	Force      bool           `yaml:"force"`
	Bundler    BundlerDTO     `yaml:"bundler"`
}

// BundlerDTO describes the external bundling engine.
type BundlerDTO struct {
	Command CommandLine       `yaml:"command"`
	Env     map[string]string `yaml:"env"`
	Config  map[string]any    `yaml:"config"`
}

// CommandLine accepts either an argument list or a single shell string.
// A string is run through "sh -c".
type CommandLine []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *CommandLine) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var line string
		if err := node.Decode(&line); err != nil {
			return err
		}
		if line == "" {
			*c = nil
			return nil
		}
		*c = CommandLine{"sh", "-c", line}
		return nil
	}

	var args []string
	if err := node.Decode(&args); err != nil {
		return err
	}
	*c = args
	return nil
}

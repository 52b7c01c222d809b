// Package commands implements the CLI commands for dyndll.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.trai.ch/dyndll/internal/app"
	"go.trai.ch/dyndll/internal/build"
)

// EnvPrefix prefixes every environment variable that overrides a flag.
const EnvPrefix = "DYNDLL"

// CLI represents the command line interface for dyndll.
type CLI struct {
	app     Application
	config  *viper.Viper
	setJSON func(bool)
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Serve(ctx context.Context, opts app.ServeOptions) error
	Build(ctx context.Context, opts app.BuildOptions) error
	Clean(ctx context.Context) error
	History(ctx context.Context, limit int, w io.Writer) error
}

// Option configures a CLI.
type Option func(*CLI)

// WithJSONLogging sets the function that switches the logger to JSON output.
func WithJSONLogging(fn func(bool)) Option {
	return func(c *CLI) {
		c.setJSON = fn
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "dyndll",
		Short:         "Prebuild third-party modules into an incrementally rebuilt remote artifact",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().BoolP("force", "f", false, "Rebuild even when the published artifact is current (env DYNDLL_FORCE)")
	rootCmd.PersistentFlags().Bool("json", false, "Log as JSON (env DYNDLL_JSON)")

	config := viper.New()
	config.SetEnvPrefix(EnvPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()
	_ = config.BindPFlag("force", rootCmd.PersistentFlags().Lookup("force"))
	_ = config.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	c := &CLI{
		app:     a,
		config:  config,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		if c.setJSON != nil && c.config.GetBool("json") {
			c.setJSON(true)
		}
	}

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newHistoryCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

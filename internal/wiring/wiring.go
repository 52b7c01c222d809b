// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/dyndll/internal/adapters/bundler"
	_ "go.trai.ch/dyndll/internal/adapters/config"
	_ "go.trai.ch/dyndll/internal/adapters/expose"
	_ "go.trai.ch/dyndll/internal/adapters/fs"
	_ "go.trai.ch/dyndll/internal/adapters/logger"
	_ "go.trai.ch/dyndll/internal/adapters/scanner"
	_ "go.trai.ch/dyndll/internal/adapters/snapshot"
	// Register app nodes.
	_ "go.trai.ch/dyndll/internal/app"
)

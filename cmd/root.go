// Package cmd provides the urdfkit command-line interface.
//
// Configuration is layered with clear precedence, lowest first:
//  1. Built-in defaults
//  2. The YAML file (--config, URDFKIT_CONFIG_FILE, ./urdfkit.yaml or the
//     user config directory)
//  3. Environment variables following URDFKIT_<SECTION>_<OPTION>, for
//     example URDFKIT_OUTPUT_INDENT or URDFKIT_ENGINE_TIMEOUT
//  4. Command-line flags
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chazu/urdfkit/internal/config"
	"github.com/chazu/urdfkit/internal/logger"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "URDFKIT"

// app carries the state shared by the subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds a fresh command tree. Each tree owns its own viper
// instance so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "urdfkit",
		Short: "Build URDF robot descriptions from Lisp scripts",
		Long: `urdfkit evaluates robot descriptions written in a small Lisp dialect and
writes them out as URDF documents.

Quick Start:
  urdfkit build robot.lisp -o robot.urdf   Write a document
  urdfkit watch robot.lisp -o robot.urdf   Rebuild on every save
  urdfkit tree robot.lisp                  Show the kinematic tree
  urdfkit mesh --shape box --dims 1,1,1    Bake a primitive to STL
  urdfkit bake robot.lisp -d meshes        Bake every link to STL
  urdfkit presets                          List predefined materials`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd.Flags()); err != nil {
				return err
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync(a.log)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./urdfkit.yaml, can also use URDFKIT_CONFIG_FILE)")
	flags.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write JSON logs to this file, rotated")

	root.AddCommand(
		newBuildCommand(a),
		newWatchCommand(a),
		newTreeCommand(a),
		newMeshCommand(a),
		newBakeCommand(a),
		newPresetsCommand(),
		newVersionCommand(),
	)
	return root
}

// flagKeys maps flag names to the config keys they override. Several
// subcommands share a flag name, so binding happens for the running
// command only.
var flagKeys = map[string]string{
	"output":    "output.path",
	"indent":    "output.indent",
	"timeout":   "engine.timeout",
	"cells":     "mesh.cells",
	"log-level": "logging.level",
	"log-file":  "logging.log_file",
}

// bindFlags ties the config keys to whichever of their flags fs defines.
func (a *app) bindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := a.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// setup loads the layered configuration and builds the logger.
func (a *app) setup() error {
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	path := a.cfgFile
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG_FILE")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.overlay(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.LogFile, os.Stderr)
	if err != nil {
		return err
	}
	a.log = log
	a.log.Debug("configuration loaded",
		zap.String("output", cfg.Output.Path),
		zap.Duration("timeout", cfg.Engine.Timeout),
		zap.Int("cells", cfg.Mesh.Cells))
	return nil
}

// overlay applies environment and flag values on top of the file config.
// viper reports a key as set only when its flag changed or its variable
// exists, so untouched keys keep the file value.
func (a *app) overlay(cfg *config.Config) {
	if a.v.IsSet("output.path") {
		cfg.Output.Path = a.v.GetString("output.path")
	}
	if a.v.IsSet("output.indent") {
		cfg.Output.Indent = a.v.GetString("output.indent")
	}
	if a.v.IsSet("engine.timeout") {
		cfg.Engine.Timeout = a.v.GetDuration("engine.timeout")
	}
	if a.v.IsSet("mesh.cells") {
		cfg.Mesh.Cells = a.v.GetInt("mesh.cells")
	}
	if a.v.IsSet("logging.level") {
		cfg.Logging.Level = a.v.GetString("logging.level")
	}
	if a.v.IsSet("logging.log_file") {
		cfg.Logging.LogFile = a.v.GetString("logging.log_file")
	}
}

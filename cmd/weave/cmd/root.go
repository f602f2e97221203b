// Package cmd implements the weave CLI.
//
// The root command loads configuration and the logger before any
// subcommand runs (render, layout, view, types).
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/weave/pkg/config"
	"github.com/go-drift/weave/pkg/logging"
	_ "github.com/go-drift/weave/pkg/widgets"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// app is the state shared by the commands of one root.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:   "weave",
		Short: "Render and inspect retained-mode widget trees",
		Long: `weave renders widget tree documents (JSON, YAML or TOML) to PNG,
prints their computed layout, or runs them interactively in the terminal.

Configuration is read from $HOME/.weave/config.yaml, ./config.yaml or
--config, and WEAVE_* environment variables (WEAVE_RUNTIME_WIDTH=320).`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			// the terminal viewer owns stdout and stderr
			var console zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
			if cmd.Name() == "view" {
				console = zapcore.AddSync(io.Discard)
			}
			logging.Initialize(a.cfg.Logger, console)
			logging.GetLogger().Debug("weave starting", zap.String("version", Version), zap.String("command", cmd.Name()))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logging.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $HOME/.weave/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Int("width", 0, "surface width in logical units (default 800)")
	root.PersistentFlags().Int("height", 0, "surface height in logical units (default 600)")
	for key, flag := range map[string]string{
		"logger.level":   "log-level",
		"runtime.width":  "width",
		"runtime.height": "height",
	} {
		_ = a.v.BindPFlag(key, root.PersistentFlags().Lookup(flag))
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newRenderCmd(a), newLayoutCmd(a), newViewCmd(a), newTypesCmd())
	return root, a
}

// load reads the config file and environment into a.cfg.
func (a *app) load() error {
	v := a.v
	if a.cfgFile != "" {
		path, err := homedir.Expand(a.cfgFile)
		if err != nil {
			return fmt.Errorf("expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".weave"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("WEAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root, _ := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

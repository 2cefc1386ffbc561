package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/xipres/pkg/config"
	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/provide-io/xipres/pkg/logging"
)

const version = "0.1.0"

var (
	configPath string
	logLevel   string

	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	warnMark = color.New(color.FgYellow).Sprint("!")
	bold     = color.New(color.Bold).SprintFunc()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xipres",
		Short:         "Flash-resident asset and memory placement tools",
		Long:          `Build flash images, mount the asset partition, and check static memory placement.`,
		Version:       buildVersion(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.toml/.yaml); discovered when omitted")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newBuildImageCmd(),
		newEncodeCmd(),
		newInspectCmd(),
		newMountCmd(),
		newPlanCmd(),
		newTrigCmd(),
		newGammaCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", failMark, err)
		if reserr.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// newLogger picks the level from --log-level, then the config, then the
// environment.
func newLogger(name, cfgLevel string) hclog.Logger {
	level := logLevel
	if level == "" {
		level = cfgLevel
	}
	if level == "" {
		level = logging.GetLogLevel()
	}
	return logging.NewLogger(name, level, nil)
}

// loadConfig layers defaults, the config file, XIPRES_* variables and the
// command's changed flags, then validates the result.
func loadConfig(cmd *cobra.Command, flags func(*cobra.Command, *config.Config)) (config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover(".")
		if err != nil {
			return config.Config{}, err
		}
		path = found
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(nil); err != nil {
		return config.Config{}, err
	}
	if flags != nil {
		flags(cmd, &cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 8 {
				return version + " (" + setting.Value[:8] + ")"
			}
		}
	}
	return version
}

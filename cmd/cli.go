// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"

	"lumiband/internal/config"
	applog "lumiband/internal/log"
	"lumiband/pkg/build"

	"github.com/spf13/cobra"
)

// options holds the persistent flags. Flags override the config file only
// when set on the command line.
type options struct {
	configPath string
	preset     string
	device     int
	brightness uint8
	tui        bool
	record     bool
	verbose    bool
}

// Execute builds the command tree and runs it with args.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand returns the lumiband command tree. Running it without a
// subcommand behaves like run.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(opts *options) *cobra.Command {
	buildInfo := build.GetBuildFlags()

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			cfg.Command = "run"
			return runLive(cmd.Context(), cfg)
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "",
		"Path to a YAML config file (default: ./config.yaml or ./lumiband.yaml)")
	flags.StringVarP(&opts.preset, "preset", "p", config.DefaultPreset,
		fmt.Sprintf("Preset active at startup %v", config.PresetNames))
	flags.IntVarP(&opts.device, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	flags.Uint8VarP(&opts.brightness, "brightness", "b", config.DefaultBrightness,
		"Master brightness (0-255)")
	flags.BoolVarP(&opts.tui, "tui", "t", false,
		"Show the terminal monitor (or the device picker for 'list')")
	flags.BoolVarP(&opts.record, "record", "r", false,
		"Record the sampled audio to a WAV file in recording.output_dir")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.AddCommand(
		newRunCommand(opts),
		newListCommand(opts),
		newSimulateCommand(opts),
	)
	return rootCmd
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("preset") {
		cfg.Preset = opts.preset
	}
	if flags.Changed("device") {
		cfg.Audio.InputDevice = opts.device
	}
	if flags.Changed("brightness") {
		cfg.Strip.Brightness = opts.brightness
	}
	if flags.Changed("tui") {
		cfg.TUI = opts.tui
	}
	if flags.Changed("record") {
		cfg.Recording.Enabled = opts.record
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	return cfg, nil
}

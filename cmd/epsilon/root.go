package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/epsilon/internal/config"
	"github.com/aretw0/epsilon/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "epsilon",
	Short: "Epsilon is an animated epsilon-greedy pipeline sequencer",
	Long: `Epsilon steps through an epsilon-greedy variable-selection pipeline,
showing when the selector explores and when it exploits.
Run it in the terminal, serve it over HTTP, or expose it to agents over MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Float64("epsilon", 0, "Exploration probability in (0,1)")
	rootCmd.PersistentFlags().Duration("interval", 0, "Delay between animation steps")
	rootCmd.PersistentFlags().Bool("loop", false, "Keep iterating after a run completes")
	rootCmd.PersistentFlags().String("lang", "", "Display language: en or es")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Seed for reproducible decision draws (0 = random)")
}

// loadConfig reads the configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("epsilon") {
		cfg.Epsilon, _ = flags.GetFloat64("epsilon")
	}
	if flags.Changed("interval") {
		cfg.Interval, _ = flags.GetDuration("interval")
	}
	if flags.Changed("loop") {
		cfg.Loop, _ = flags.GetBool("loop")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("lang") {
		cfg.Locale.Default, _ = flags.GetString("lang")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.Log.Level))
}

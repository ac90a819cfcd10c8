package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/epsilon/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Animate the pipeline in the terminal",
	Long: `Plays one run of the pipeline (or keeps iterating with --loop),
redrawing the stages and the epsilon-greedy status at every step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		plain, _ := cmd.Flags().GetBool("plain")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger(cfg)
		engine, err := newEngine(ctx, cfg, logger, nil)
		if err != nil {
			return fmt.Errorf("initializing sequencer: %w", err)
		}
		defer engine.Close()

		player := tui.NewPlayer(engine, engine.Catalog(), os.Stdout)
		player.Lang = cfg.Locale.Default
		player.Loop = cfg.Loop

		if !plain && tui.IsTerminal(os.Stdout) {
			render, err := tui.NewRenderer(tui.Width(os.Stdout))
			if err != nil {
				return fmt.Errorf("initializing renderer: %w", err)
			}
			player.Render = render
		}
		if !noBanner {
			tui.PrintBanner(os.Stdout)
		}

		return player.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Bool("plain", false, "Print one status line per step instead of the full panel")
	playCmd.Flags().Bool("no-banner", false, "Skip the startup banner")
}

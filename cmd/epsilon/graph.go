package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the pipeline diagram",
	Long: `Outputs the pipeline as a Mermaid flowchart (graph TD) or a Graphviz
DOT document. With --step the diagram is annotated with the stages and
edges lit at that point of a run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		overlay, _ := cmd.Flags().GetBool("overlay")
		step, _ := cmd.Flags().GetInt("step")

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		engine, err := newEngine(ctx, cfg, newLogger(cfg), nil)
		if err != nil {
			return fmt.Errorf("initializing sequencer: %w", err)
		}
		defer engine.Close()

		if step > 0 {
			engine.Play(ctx)
			for i := 0; i < step; i++ {
				engine.Step()
			}
			engine.Pause()
			overlay = overlay || !cmd.Flags().Changed("overlay")
		}

		output, err := engine.Graph(engine.Snapshot(), cfg.Locale.Default, format, overlay)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or dot")
	graphCmd.Flags().Bool("overlay", false, "Color active stages and edges")
	graphCmd.Flags().Int("step", 0, "Advance a run by this many steps before exporting")
}

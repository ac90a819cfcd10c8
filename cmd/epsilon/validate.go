package main

import (
	"fmt"

	httpAdapter "github.com/aretw0/epsilon/pkg/adapters/http"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/topology"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the pipeline for consistency",
	Long: `Loads the configuration, the pipeline topology, the locale overrides and
the API description, and reports the first problem found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runValidate(cmd); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	topo, err := topology.New(topology.Default().Stages(), topology.Default().Edges(),
		topology.WithDecision(topology.StageDecision),
		topology.WithIterationCheck(topology.StageIterationCheck),
	)
	if err != nil {
		return err
	}

	catalog, err := newCatalog(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	for _, lang := range []string{locale.English, locale.Spanish} {
		for _, st := range topo.Stages() {
			key := "stage." + st.ID + ".label"
			if !catalog.Has(lang, key) && !catalog.Has(locale.English, key) {
				return fmt.Errorf("missing text %q for %s", key, lang)
			}
		}
	}

	if _, err := httpAdapter.GetSwagger(); err != nil {
		return err
	}
	return nil
}

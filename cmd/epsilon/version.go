package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/epsilon"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of epsilon",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("epsilon version %s\n", strings.TrimSpace(epsilon.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

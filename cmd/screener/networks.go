package main

import (
	"github.com/spf13/cobra"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
)

func newNetworksCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List known networks; * marks the default selection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			defaults := cfg.Screener.DefaultCriteria()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"groups":   pairs.NetworkGroups(),
					"defaults": defaults,
				})
			}
			return printNetworks(cmd.OutOrStdout(), pairs.NetworkGroups(), defaults.Chains)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

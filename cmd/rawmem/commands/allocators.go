package commands

import (
	"github.com/spf13/cobra"

	"github.com/momentics/hioload-rawmem/pool"
)

func newAllocatorsCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "allocators",
		Short: "List allocators available in this build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outputResult(cmd.OutOrStdout(), map[string]any{
				"allocators": pool.Names(),
			}, g.outputJSON)
		},
	}
}

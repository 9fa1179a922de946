package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/leads"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect aggregated lead counts",
}

var leadsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count cached leads by status and list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		agg := leads.NewAggregator(env.Gateway, env.Ledger)
		result, err := agg.Aggregate(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	leadsCmd.AddCommand(leadsCountCmd)
	rootCmd.AddCommand(leadsCmd)
}

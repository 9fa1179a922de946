package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/leads"
)

var (
	exportOut    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export valid unexported leads to CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		out := exportOut
		if out == "" {
			out = cfg.Export.OutputFile
		}
		format := exportFormat
		if format == "" {
			format = cfg.Export.Format
		}

		result, err := leads.Export(ctx, env.Gateway, env.Ledger, out, format)
		if err != nil {
			return err
		}

		fmt.Printf("exported %d leads to %s (batch %s, skipped %d exported, %d invalid)\n",
			result.Exported, result.File, result.BatchID,
			result.SkippedExported, result.SkippedInvalid)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: csv or xlsx")

	rootCmd.AddCommand(exportCmd)
}

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/draft"
)

var (
	draftName        string
	draftCompanyInfo string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a personalized outreach email for a lead",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Anthropic.Key == "" {
			return eris.New("anthropic.key is not configured")
		}

		client := draft.NewClient(cfg.Anthropic.Key, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		d, err := draft.Generate(ctx, client, draftName, draftCompanyInfo)
		if err != nil {
			return err
		}

		if d.Subject != "" {
			fmt.Printf("Subject: %s\n\n", d.Subject)
		}
		fmt.Println(d.Body)
		return nil
	},
}

func init() {
	draftCmd.Flags().StringVar(&draftName, "name", "", "full name of the lead")
	draftCmd.Flags().StringVar(&draftCompanyInfo, "company-info", "", "company or person context to personalize with")
	_ = draftCmd.MarkFlagRequired("name")
	_ = draftCmd.MarkFlagRequired("company-info")

	rootCmd.AddCommand(draftCmd)
}

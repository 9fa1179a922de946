package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/email"
	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	verifyName    string
	verifyDomain  string
	verifyCompany string
	verifyList    string
	verifyEmails  []string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Generate and verify candidate work emails",
	Long:  "Derives candidate addresses from --name and --domain (or takes explicit --email addresses), verifies each against NeverBounce through the cache, and prints the outcome per address.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		lead := model.LeadContext{
			CompanyName: verifyCompany,
			Domain:      verifyDomain,
			ListID:      verifyList,
		}

		emails := verifyEmails
		if len(emails) == 0 {
			if verifyName == "" || verifyDomain == "" {
				return eris.New("either --email or both --name and --domain are required")
			}
			candidates := email.Generate(verifyName, verifyDomain)
			if len(candidates) == 0 {
				return eris.Errorf("no candidates for name %q (need at least first and last name)", verifyName)
			}
			for _, c := range candidates {
				emails = append(emails, c.Address())
			}
			if first, last, ok := email.SplitName(verifyName); ok {
				lead.FirstName = first
				lead.LastName = last
			}
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results := env.Orchestrator.VerifyBatch(ctx, emails, lead)

		keys := make([]string, 0, len(results))
		for k := range results {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tSTATUS\tSOURCE")
		failed := 0
		for _, k := range keys {
			r := results[k]
			if r.Err != nil {
				failed++
				fmt.Fprintf(w, "%s\terror\t%s\n", k, eris.Cause(r.Err))
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Outcome.Email, r.Outcome.Status, r.Outcome.Source)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if failed == len(results) && failed > 0 {
			return eris.Errorf("all %d verifications failed", failed)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyName, "name", "", "full name of the person")
	verifyCmd.Flags().StringVar(&verifyDomain, "domain", "", "employer email domain")
	verifyCmd.Flags().StringVar(&verifyCompany, "company", "", "company name stored with the result")
	verifyCmd.Flags().StringVar(&verifyList, "list", "", "lead list ID stored with the result")
	verifyCmd.Flags().StringSliceVar(&verifyEmails, "email", nil, "explicit email address to verify (repeatable, skips candidate generation)")

	rootCmd.AddCommand(verifyCmd)
}

package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/cpd/internal/audit"
	"github.com/darmiel/cpd/pkg/client"
)

var auditLogOpts client.ListAuditsOpts

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		if limit > 0 {
			auditLogOpts.Limit = uint(limit)
		}

		cli, err := getClient()
		if err != nil {
			return err
		}

		audits, correlation, err := cli.ListAudits(cmd.Context(), auditLogOpts)
		if err != nil {
			return logError(err, correlation, "failed to fetch audit log")
		}

		log.Debug().Int("count", len(audits)).Msg("fetched audit log")

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "Correlation", "Fingerprint", "Site", "External ID", "OK", "Error",
		})

		for _, e := range audits {
			status := greenCheck
			if !e.Success {
				status = redCross
			}

			site, externalID := audit.KeySite(e.Key), "-"
			if e.Identity != nil {
				site = e.Identity.Site.Prefix()
				externalID = truncate(e.Identity.ExternalID, 35)
			}
			if site == "" {
				site = "-"
			}

			t.AppendRow(table.Row{
				e.Time.Format(time.RFC3339),
				e.ID,
				truncate(e.Key, 24),
				site,
				externalID,
				status,
				e.Error,
			})
		}

		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().IntP("limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().StringVar(&auditLogOpts.CorrelationID, "correlation-id", "", "Only show the entry with this correlation ID")
	auditLogCmd.Flags().StringVar(&auditLogOpts.Site, "site", "", "Only show entries for this site prefix")
	auditLogCmd.Flags().StringVar(&auditLogOpts.ExternalID, "external-id", "", "Only show entries for this external ID")
}

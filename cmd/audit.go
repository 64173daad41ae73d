package cmd

import (
	"github.com/spf13/cobra"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log of a server",
	Long:  `Commands for reading key resolution audits. Requires an admin token (see 'cpd login').`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

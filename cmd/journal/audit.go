package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verifies the audit log HMAC chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := auditLog.Verify()
		if err != nil {
			return fmt.Errorf("audit log integrity check failed: %w", err)
		}
		color.Green("✓ Audit log verified: %d records, chain intact", count)
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditVerifyCmd)
}

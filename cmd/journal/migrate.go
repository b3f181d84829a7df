package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tpabla/journal-tui/pkg/audit"
)

var migrateMatch string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copies plaintext entries into the encrypted vault",
	Long: `Copies entries from the unencrypted entries directory into the vault.
The vault is mounted for the copy and unmounted afterwards unless it
was already mounted. Source files are left in place; delete them
yourself once you have verified the migration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wasMounted := mgr.IsMounted()
		if !wasMounted {
			if err := mgr.MountWithStore(); err != nil {
				return err
			}
		}

		count, err := mgr.MigrateEntries(cfg.EntriesDir(), migrateMatch)
		if err != nil {
			record(auditLog.Error(audit.OpVaultMigrate, err))
			if !wasMounted {
				mgr.Unmount()
			}
			return err
		}
		record(auditLog.Log(audit.OpVaultMigrate, audit.ResultSuccess, fmt.Sprintf("entries=%d", count)))

		if !wasMounted {
			if err := mgr.Unmount(); err != nil {
				return err
			}
		}

		if count == 0 {
			fmt.Println("No entries to migrate")
			return nil
		}
		color.Green("✓ Migrated %d entries from %s", count, cfg.EntriesDir())
		fmt.Println("Source files were kept; remove them after verifying.")
		return nil
	},
}

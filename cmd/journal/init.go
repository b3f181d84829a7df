package main

import (
	"fmt"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tpabla/journal-tui/pkg/audit"
	"github.com/tpabla/journal-tui/pkg/secret"
)

var initWithPassword bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Creates the encrypted journal vault",
	Long: `Creates the encrypted disk image and stores the unlock secret in the
system keychain. By default the secret is generated randomly; pass
--password to choose it yourself.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mgr.Exists() {
			return fmt.Errorf("vault already exists at %s", mgr.ImagePath)
		}

		var chosen *secret.Secret
		if initWithPassword {
			var err error
			chosen, err = promptNewPassword()
			if err != nil {
				return err
			}
			defer chosen.Wipe()
		}

		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " Creating encrypted vault..."
		sp.Start()

		var err error
		if chosen != nil {
			err = mgr.CreateEncryptedWith(chosen)
		} else {
			err = mgr.CreateEncrypted()
		}
		sp.Stop()
		if err != nil {
			record(auditLog.Error(audit.OpVaultCreate, err))
			return err
		}
		record(auditLog.Success(audit.OpVaultCreate))

		color.Green("✓ Vault created at %s", mgr.ImagePath)
		color.Green("✓ Unlock secret stored in the system keychain")
		fmt.Println("Run 'journal' to open it.")

		// Offer to bring existing plaintext entries along.
		migrated, err := migratePlaintext()
		if err != nil {
			return err
		}
		if migrated > 0 {
			color.Green("✓ Migrated %d existing entries into the vault", migrated)
		}
		return nil
	},
}

// promptNewPassword reads and confirms a password without echo.
func promptNewPassword() (*secret.Secret, error) {
	fmt.Print("Enter vault password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm vault password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if string(first) != string(second) {
		return nil, fmt.Errorf("passwords do not match")
	}

	strength := secret.EstimateStrength(string(first))
	fmt.Printf("Password strength: %s\n", strength)
	if strength < secret.StrengthGood {
		color.Yellow("Warning: a longer password protects the vault better")
	}

	return secret.New(first)
}

// migratePlaintext moves pre-vault entries into the new image. Mounts and
// unmounts around the copy.
func migratePlaintext() (int, error) {
	if err := mgr.MountWithStore(); err != nil {
		return 0, err
	}
	count, err := mgr.MigrateEntries(cfg.EntriesDir(), "")
	if err != nil {
		record(auditLog.Error(audit.OpVaultMigrate, err))
		mgr.Unmount()
		return 0, err
	}
	if count > 0 {
		record(auditLog.Log(audit.OpVaultMigrate, audit.ResultSuccess, fmt.Sprintf("entries=%d", count)))
	}
	return count, mgr.Unmount()
}

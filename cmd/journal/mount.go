package main

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tpabla/journal-tui/pkg/audit"
	"github.com/tpabla/journal-tui/pkg/keychain"
	"github.com/tpabla/journal-tui/pkg/secret"
)

// mountCmd and unmountCmd skip the animation, for scripting and recovery.

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Mounts the vault without the authentication gate animation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if mgr.IsMounted() {
			color.Yellow("Already mounted at %s", mgr.MountPoint)
			return nil
		}

		err := mgr.MountWithStore()
		if errors.Is(err, keychain.ErrNotFound) {
			// Keychain lost the secret; fall back to asking for it.
			err = mountWithPrompt()
		}
		if err != nil {
			record(auditLog.Error(audit.OpVaultMount, err))
			return err
		}
		record(auditLog.Success(audit.OpVaultMount))
		color.Green("✓ Mounted at %s", mgr.MountPoint)
		return nil
	},
}

func mountWithPrompt() error {
	fmt.Print("Vault password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	s, err := secret.New(password)
	if err != nil {
		return err
	}
	defer s.Wipe()
	return mgr.Mount(s)
}

var unmountCmd = &cobra.Command{
	Use:     "unmount",
	Aliases: []string{"lock"},
	Short:   "Unmounts the vault, locking all entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !mgr.IsMounted() {
			color.Yellow("Not mounted")
			return nil
		}
		if err := mgr.Unmount(); err != nil {
			record(auditLog.Error(audit.OpVaultUnmount, err))
			return err
		}
		record(auditLog.Success(audit.OpVaultUnmount))
		color.Green("✓ Vault locked")
		return nil
	},
}

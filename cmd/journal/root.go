package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/tpabla/journal-tui/internal/auth"
	"github.com/tpabla/journal-tui/internal/config"
	"github.com/tpabla/journal-tui/internal/ui"
	"github.com/tpabla/journal-tui/pkg/audit"
	"github.com/tpabla/journal-tui/pkg/gate"
	"github.com/tpabla/journal-tui/pkg/keychain"
	"github.com/tpabla/journal-tui/pkg/notes"
	"github.com/tpabla/journal-tui/pkg/vault"
)

var (
	cfg      *config.Config
	mgr      *vault.Manager
	auditLog *audit.Logger
)

const lockAnimationDuration = 2 * time.Second

var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "journal is an encrypted personal journal with a cinematic unlock",
	Long: `An encrypted journal for macOS. Entries live inside an AES-256
encrypted disk image; opening the journal runs a matrix-rain
authentication gate, mounts the image, and drops you into the
entry browser. Quitting locks everything again.`,
	// PersistentPreRunE runs before the root command and all subcommands.
	// This loads the config and builds the vault manager.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		mgr = vault.New(cfg.BaseDir, cfg.VolumeName)
		mgr.ImageSize = cfg.ImageSize
		mgr.SetSecretStore(keychain.New())
		auditLog = audit.NewLogger(cfg.AuditDir())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(unmountCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(auditCmd)

	initCmd.Flags().BoolVar(&initWithPassword, "password", false, "Choose the unlock password instead of generating one")
	migrateCmd.Flags().StringVar(&migrateMatch, "match", "", "Only migrate entries whose filename matches this glob")
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "Backup file path (default: journal-backup-<date>.jbak)")
	restoreCmd.Flags().StringVarP(&restoreDir, "dest", "d", "", "Restore destination (default: the mounted entries directory)")
}

// runSession is the full journal session: gate, mount, browse, lock. Without
// a vault the gate still runs and entries stay in the plaintext directory.
func runSession(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen, err := gate.NewScreen()
	if err != nil {
		return err
	}
	defer screen.Fini()

	ctrl := gate.New()
	ok, err := ctrl.Run(ctx, screen, auth.System().Authenticate)
	if err != nil {
		record(auditLog.Error(audit.OpGateCancelled, err))
		return err
	}
	if !ok {
		record(auditLog.Denied(audit.OpGateFailed, "authentication denied"))
		screen.Fini()
		fmt.Println("Access denied.")
		return nil
	}
	record(auditLog.Success(audit.OpGateSuccess))

	if !mgr.Exists() {
		// Pre-vault mode: plaintext entries, no mount or lock animation.
		if err := browse(screen, cfg.EntriesDir()); err != nil {
			return err
		}
		screen.Fini()
		fmt.Println("No vault yet; entries are unencrypted. Run 'journal init'.")
		return nil
	}

	if err := mgr.MountWithStore(); err != nil {
		record(auditLog.Error(audit.OpVaultMount, err))
		return err
	}
	record(auditLog.Success(audit.OpVaultMount))

	if err := browse(screen, mgr.EntriesPath()); err != nil {
		// Lock even when the browser failed.
		if unmountErr := mgr.Unmount(); unmountErr != nil {
			record(auditLog.Error(audit.OpVaultUnmount, unmountErr))
			fmt.Fprintf(os.Stderr, "warning: %v\n", unmountErr)
		}
		return err
	}

	if err := mgr.Unmount(); err != nil {
		record(auditLog.Error(audit.OpVaultUnmount, err))
		return err
	}
	record(auditLog.Success(audit.OpVaultUnmount))

	return ctrl.RunLock(screen, lockAnimationDuration)
}

func browse(screen tcell.Screen, dir string) error {
	store, err := notes.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	browser := ui.NewBrowser(store, ui.EditorOpener(cfg.EditorCommand()))
	return browser.Run(screen)
}

// record surfaces a failed audit write without blocking the session.
func record(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit: %v\n", err)
	}
}

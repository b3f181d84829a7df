package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows vault and mount state",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Image:       %s\n", mgr.ImagePath)
		fmt.Printf("Volume:      %s\n", mgr.VolumeName)
		fmt.Printf("Mount point: %s\n", mgr.MountPoint)

		if !mgr.Exists() {
			color.Red("Vault:       not created (run 'journal init')")
			return nil
		}
		color.Green("Vault:       created")

		if mgr.IsMounted() {
			color.Yellow("State:       UNLOCKED (mounted)")
			entries, err := os.ReadDir(mgr.EntriesPath())
			if err == nil {
				fmt.Printf("Entries:     %d\n", countEntries(entries))
			}
		} else {
			color.Green("State:       locked")
		}
		return nil
	},
}

func countEntries(entries []os.DirEntry) int {
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}

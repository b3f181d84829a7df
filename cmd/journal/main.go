package main

import (
	"fmt"
	"os"

	"github.com/tpabla/journal-tui/pkg/secret"
)

func main() {
	// Entry plaintext passes through this process while the vault is open.
	secret.DisableCoreDumps()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

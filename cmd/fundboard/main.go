// Command fundboard serves the dashboard API and runs ledger maintenance.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command weighctl is a small operator CLI for the weigh engine: trigger a
// batch-weight ingest, check health, and list uncalibrated containers,
// following the cmd/cli PersistentPreRunE lazy-init pattern in the
// teacher repository.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var baseURL string

var rootCmd = &cobra.Command{
	Use:               "weighctl",
	Short:             "Operate a running weigh engine instance",
	PersistentPreRunE: initClient,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "addr", "http://localhost:8080", "weigh engine base URL")
	rootCmd.AddCommand(healthCmd, unknownCmd, batchWeightCmd)
}

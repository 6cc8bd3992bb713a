package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the weigh engine's storage is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out map[string]string
		if err := getJSON("/health", &out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out["status"])
		return nil
	},
}

var unknownCmd = &cobra.Command{
	Use:   "unknown",
	Short: "List uncalibrated container ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		var ids []string
		if err := getJSON("/unknown", &ids); err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var batchFile string

var batchWeightCmd = &cobra.Command{
	Use:   "batch-weight",
	Short: "Trigger ingest of a staged container-tare batch file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchFile == "" {
			return fmt.Errorf("--file is required")
		}
		var out map[string]any
		if err := postForm("/batch-weight", url.Values{"file": {batchFile}}, &out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", out)
		return nil
	},
}

func init() {
	batchWeightCmd.Flags().StringVar(&batchFile, "file", "", "batch file name staged under the weigh engine's batch directory")
}

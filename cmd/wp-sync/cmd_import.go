/*
Copyright © 2025 Daniel Wrenner <daniel@dwrenner.dev>
*/

package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dwrenner/wp-sync/syncer"
)

var importUsage = strings.TrimSpace(`
Push a previously exported tree back into a WordPress site.  The --mode flag decides what happens
to items that already exist remotely: 'create' only makes new items, 'update' only touches existing
ones, 'sync' (the default) does both.
`)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the local store into a WordPress site",
	Long:  importUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		debugLog("  Mode: %s\n", ImportMode)
		debugLog("  DryRun: %v\n", DryRun)
		return runImport(cmd)
	},
}

var (
	ImportMode string
	DryRun     bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&ImportMode, "mode", "sync", "reconciliation mode: create, update or sync")
	importCmd.Flags().BoolVar(&DryRun, "dry-run", false, "report the plan without changing anything")
}

func runImport(cmd *cobra.Command) error {
	mode, err := syncer.ParseMode(ImportMode)
	if err != nil {
		return fmt.Errorf("cmd: %w", err)
	}

	store, err := storeFromFlags()
	if err != nil {
		return err
	}

	api, err := apiFromFlags()
	if err != nil {
		return err
	}

	importer := &syncer.Importer{
		API:     api,
		Store:   store,
		Mode:    mode,
		DryRun:  DryRun,
		Workers: Workers,
		Logger:  log.Default(),
	}

	summary, err := importer.Import(cmd.Context())
	if err != nil {
		return fmt.Errorf("cmd: import failed: %w", err)
	}

	printSummary(summary)

	if failures := summary.Failures(); failures > 0 {
		return fmt.Errorf("cmd: import finished with %d failed items", failures)
	}
	return nil
}

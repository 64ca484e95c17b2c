/*
Copyright © 2025 Daniel Wrenner <daniel@dwrenner.dev>
*/

package main

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Commands to list things on the site",
	Long: `
Commands in this namespace are to help you explore the WordPress site.
`,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

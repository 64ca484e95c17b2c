/*
Copyright © 2025 Daniel Wrenner <daniel@dwrenner.dev>
*/

package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwrenner/wp-sync/plugins"
	"github.com/dwrenner/wp-sync/wordpress"
)

var listPluginsUsage = strings.TrimSpace(`
If you want to find out what plugins your site has installed, and which metadata prefixes we'd
attribute to each of them, use this command.  Needs an administrator account.
`)

var listPluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Print list of installed plugins",
	Long:  listPluginsUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		api, err := apiFromFlags()
		if err != nil {
			return err
		}

		log.Printf("Listing plugins on %s...\n", api.BaseURI.Host)
		installed, err := api.ListPlugins(ctx, wordpress.ListPluginsQuery{})
		if err != nil {
			return fmt.Errorf("cmd: couldn't list plugins: %w", err)
		}

		log.Printf("Found %d plugins on '%s'.\n", len(installed), api.BaseURI.Host)

		sort.Slice(installed, func(i, j int) bool {
			return installed[i].Slug() < installed[j].Slug()
		})

		fmt.Printf("plugins:\n")
		for _, p := range installed {
			d := plugins.NewDescriptor(p.Slug(), p.Name, p.Version)
			fmt.Printf("  - %s (%s %s)\n", d.Slug, d.Name, d.Version)
			fmt.Printf("    prefixes: %s\n", strings.Join(d.Prefixes, ", "))
		}

		return nil
	},
}

func init() {
	listCmd.AddCommand(listPluginsCmd)
}

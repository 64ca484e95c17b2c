/*
Copyright © 2025 Daniel Wrenner <daniel@dwrenner.dev>
*/

package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"

	"github.com/dwrenner/wp-sync/localstore"
	"github.com/dwrenner/wp-sync/syncer"
)

var exportUsage = strings.TrimSpace(`
Pull the site's posts, pages, media, plugin metadata and options into the local store.
`)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a WordPress site to the local store",
	Long:  exportUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		debugLog("  WriteMarkdown: %v\n", WriteMarkdown)
		debugLog("  Statuses: %v\n", Statuses)
		return runExport(cmd)
	},
}

var (
	WriteMarkdown bool
	WithVCR       bool
	Statuses      []string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(&WriteMarkdown, "write-markdown", false, "also write a Markdown rendition of each item")
	exportCmd.Flags().BoolVar(&WithVCR, "with-vcr", false, "use go-vcr to cache responses")
	exportCmd.Flags().StringSliceVar(&Statuses, "status", []string{}, "item statuses to export (default: publish,draft)")
}

func runExport(cmd *cobra.Command) error {
	store, err := storeFromFlags()
	if err != nil {
		return err
	}
	store.WriteMarkdown = WriteMarkdown

	api, err := apiFromFlags()
	if err != nil {
		return err
	}

	if WithVCR {
		// set up VCR recordings.
		opts := &recorder.Options{
			CassetteName:       "fixtures/wp-stuff",
			Mode:               recorder.ModeReplayWithNewEpisodes,
			SkipRequestLatency: true,
			RealTransport:      http.DefaultTransport,
		}
		r, err := recorder.NewWithOptions(opts)
		if err != nil {
			return fmt.Errorf("cmd: couldn't set up go-vcr recording: %w", err)
		}

		defer r.Stop() // Make sure recorder is stopped once done with it

		// Add a hook which removes Authorization headers from all requests
		hook := func(i *cassette.Interaction) error {
			delete(i.Request.Headers, "Authorization")
			return nil
		}
		r.AddHook(hook, recorder.AfterCaptureHook)
		r.SetReplayableInteractions(true)

		api.Client = r.GetDefaultClient()
	}

	exporter := &syncer.Exporter{
		API:      api,
		Store:    store,
		Workers:  Workers,
		Statuses: Statuses,
		Logger:   log.Default(),
	}

	summary, err := exporter.Export(cmd.Context())
	if err != nil {
		return fmt.Errorf("cmd: export failed: %w", err)
	}

	printSummary(summary)

	if failures := summary.Failures(); failures > 0 {
		return fmt.Errorf("cmd: export finished with %d failed items", failures)
	}
	return nil
}

// storeFromFlags resolves the --store and --site flags into a Store handle
// with an existing on-disk root.
func storeFromFlags() (*localstore.Store, error) {
	if LocalStore == "" {
		return nil, fmt.Errorf("cmd: no location set for local store.  Use --store or set it in your config file")
	}
	if Site == "" {
		return nil, fmt.Errorf("cmd: no site set.  Use --site or set it in your config file")
	}

	storePath, err := homedir.Expand(LocalStore)
	if err != nil {
		return nil, fmt.Errorf("cmd: couldn't expand homedir: %w", err)
	}

	if _, err := os.Stat(storePath); err != nil {
		return nil, fmt.Errorf("cmd: couldn't stat store path %s: %w", storePath, err)
	}

	siteSlug, err := localstore.Canonicalise(strings.TrimPrefix(strings.TrimPrefix(Site, "https://"), "http://"))
	if err != nil {
		return nil, fmt.Errorf("cmd: couldn't derive site directory name from %s: %w", Site, err)
	}

	return &localstore.Store{
		Root: storePath,
		Site: siteSlug,
	}, nil
}

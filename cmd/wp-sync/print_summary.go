package main

import (
	"fmt"

	"github.com/dwrenner/wp-sync/internal/termfmt"
	"github.com/dwrenner/wp-sync/syncer"
)

var (
	okStyle     = termfmt.With(termfmt.C16Color{Name: termfmt.Green})
	updateStyle = termfmt.With(termfmt.C16Color{Name: termfmt.Cyan})
	skipStyle   = termfmt.With(termfmt.C16Color{Name: termfmt.Yellow})
	failStyle   = termfmt.With(termfmt.C16Color{Name: termfmt.Red})
)

func actionStyle(action string) termfmt.Style {
	switch action {
	case "update":
		return updateStyle
	case "skip":
		return skipStyle
	default:
		return okStyle
	}
}

// printSummary renders a run summary to stdout.  Failed and skipped items
// are listed individually; clean successes only contribute to the totals.
func printSummary(summary *syncer.Summary) {
	headline := fmt.Sprintf("%s (%s)", summary.Site, summary.Mode)
	if summary.DryRun {
		headline += " [dry-run]"
	}
	fmt.Printf("\n%v\n", termfmt.Bold().V(headline))

	for _, item := range summary.Items {
		switch {
		case item.Failed():
			fmt.Printf("  %v %s/%s: %v\n", failStyle.V("FAIL"), item.Collection, item.Slug, item.Err)
		case item.SkipReason != "":
			fmt.Printf("  %v %s/%s (%s)\n", skipStyle.V("skip"), item.Collection, item.Slug, item.SkipReason)
		case Debug:
			fmt.Printf("  %v %s/%s (%d media, groups: %v)\n",
				actionStyle(item.Action).V(item.Action), item.Collection, item.Slug, item.MediaTransferred, item.Groups)
		}

		for _, warning := range item.Warnings {
			fmt.Printf("    %v %s/%s: %s\n", skipStyle.V("warn"), item.Collection, item.Slug, warning)
		}
	}

	for _, warning := range summary.Warnings {
		fmt.Printf("  %v %s\n", skipStyle.V("warn"), warning)
	}

	if len(summary.SiteGroups) > 0 {
		fmt.Printf("  site-wide groups: %v\n", summary.SiteGroups)
	}

	fmt.Printf("  %v ok, %v skipped, %v failed (%d items total)\n",
		okStyle.V(summary.Succeeded()),
		skipStyle.V(summary.Skipped()),
		failStyle.V(summary.Failures()),
		len(summary.Items))
}

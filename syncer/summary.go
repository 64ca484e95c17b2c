package syncer

// ItemResult records the outcome for one content item.  Content and
// metadata have independent failure domains: a failed metadata push after a
// successful content write lands in Warnings, not Err.
type ItemResult struct {
	Collection string // posts, pages
	Slug       string

	// Action is "export" for export runs, or the reconciliation outcome
	// for import runs.
	Action     string
	SkipReason string

	// MediaTransferred counts assets actually downloaded or uploaded (not
	// ones skipped as already present).
	MediaTransferred int

	// Groups assigned to this item's metadata.
	Groups []string

	Warnings []string
	Err      error
}

// Failed reports whether this item failed outright.
func (r ItemResult) Failed() bool {
	return r.Err != nil
}

// Summary accumulates per-unit results for one run.  A run only terminates
// early on unrecoverable setup failures; everything else ends up here.
type Summary struct {
	Site string

	// Mode is "export" or the import mode label; DryRun marks a plan-only
	// import run.
	Mode   string
	DryRun bool

	Items []ItemResult

	// SiteGroups lists the plugin-level (site-wide) groups written or
	// pushed.
	SiteGroups []string

	Warnings []string
}

func (s *Summary) add(result ItemResult) {
	s.Items = append(s.Items, result)
}

func (s *Summary) Failures() int {
	n := 0
	for _, item := range s.Items {
		if item.Failed() {
			n++
		}
	}
	return n
}

func (s *Summary) Skipped() int {
	n := 0
	for _, item := range s.Items {
		if item.Action == ActionSkip.String() {
			n++
		}
	}
	return n
}

func (s *Summary) Succeeded() int {
	n := 0
	for _, item := range s.Items {
		if !item.Failed() && item.Action != ActionSkip.String() {
			n++
		}
	}
	return n
}

package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dwrenner/wp-sync/localstore"
	"github.com/dwrenner/wp-sync/media"
	"github.com/dwrenner/wp-sync/wordpress"
)

// Importer pushes a local export tree back to a site.  The declared Mode
// decides what happens to items that do or don't already exist remotely;
// DryRun computes and reports the plan without mutating anything, remote or
// local.
type Importer struct {
	API     *wordpress.API
	Store   *localstore.Store
	Mode    Mode
	DryRun  bool
	Workers int

	Logger *log.Logger
}

// Import runs one whole import.  The manifest is required: a tree without
// one was never exported, which counts as missing local root.
func (i *Importer) Import(ctx context.Context) (*Summary, error) {
	summary := &Summary{Site: i.Store.Site, Mode: i.Mode.String(), DryRun: i.DryRun}

	manifest, err := i.Store.LoadManifest()
	if err != nil {
		return nil, fmt.Errorf("syncer: no usable export at %s: %w", i.Store.SiteDir(), err)
	}

	// connectivity check; a failure here is unrecoverable.
	uctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	user, err := i.API.CurrentUser(uctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("syncer: couldn't reach site %s: %w", i.API.BaseURI, err)
	}
	i.Logger.Printf("Logged in to %s as '%s'...\n", i.API.BaseURI.Host, user.Name)
	i.Logger.Printf("Importing %d items in mode '%s'...\n", len(manifest.Items), i.Mode)

	bar := phaseBar("items", len(manifest.Items))
	for _, entry := range manifest.Items {
		summary.add(i.importItem(ctx, entry))
		bar.bar.Increment()
	}
	bar.wait()

	i.importSiteOptions(ctx, summary)

	return summary, nil
}

func collectionType(collection string) wordpress.ItemType {
	if collection == "pages" {
		return wordpress.PageItem
	}
	return wordpress.PostItem
}

// importItem reconciles and executes one item.  Operations run in a fixed
// order (read local state, media upload, content write, metadata write)
// because each step depends on the previous one's output.
func (i *Importer) importItem(ctx context.Context, entry localstore.ManifestItem) ItemResult {
	result := ItemResult{
		Collection: entry.Type,
		Slug:       entry.Slug,
	}

	local, err := i.Store.ReadItem(entry.Type, entry.Slug)
	if err != nil {
		// malformed local state fails this item; the run carries on.
		result.Err = err
		return result
	}
	result.Groups = entry.Groups

	t := collectionType(entry.Type)

	fctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	existing, err := i.API.FindItemBySlug(fctx, t, entry.Slug)
	cancel()
	remoteExists := err == nil
	if err != nil && !errors.Is(err, wordpress.ErrNotFound) {
		result.Err = fmt.Errorf("syncer: existence lookup failed: %w", err)
		return result
	}

	action, reason := Decide(i.Mode, remoteExists)
	result.Action = action.String()
	result.SkipReason = reason
	if action == ActionSkip {
		return result
	}

	transfer := &media.Transfer{
		Client:  i.API.Client,
		Workers: i.Workers,
		Progress: func(msg string) {
			result.Warnings = append(result.Warnings, msg)
		},
	}

	if i.DryRun {
		// describe the plan, touch nothing
		pending, err := i.pendingUploads(local)
		if err != nil {
			result.Err = err
			return result
		}
		result.MediaTransferred = pending
		return result
	}

	uploaded, err := transfer.UploadAll(ctx, localstore.MediaDir(local.Dir), i.API, local.MediaMap)
	result.MediaTransferred = uploaded
	if err != nil {
		result.Err = fmt.Errorf("syncer: media upload aborted: %w", err)
		return result
	}

	// record upload results before touching the remote item, so an
	// interrupted run doesn't re-upload
	if err := local.MediaMap.Write(localstore.MappingPath(local.Dir)); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("couldn't persist media mapping: %v", err))
	}

	payload := wordpress.ItemPayload{
		Slug:       entry.Slug,
		Status:     local.Item.Status,
		Title:      local.Item.Title,
		Content:    media.RewriteToRemote(local.Content, local.MediaMap),
		Excerpt:    local.Item.Excerpt,
		Categories: local.Item.Categories,
		Tags:       local.Item.Tags,
		Parent:     local.Item.Parent,
		MenuOrder:  local.Item.MenuOrder,
	}

	wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var remote *wordpress.Item
	switch action {
	case ActionCreate:
		remote, err = i.API.CreateItem(wctx, t, payload)
	case ActionUpdate:
		remote, err = i.API.UpdateItem(wctx, t, existing.ID, payload)
	}
	if err != nil {
		result.Err = fmt.Errorf("syncer: couldn't %s item: %w", action, err)
		return result
	}

	// Content and metadata have independent failure domains: the item
	// already succeeded, so an exhausted metadata push is only a warning.
	merged := mergeMetadata(local.Groups, local.Item.Ungrouped)
	pushers := []MetadataPusher{
		combinedPush{api: i.API},
		perKeyPush{api: i.API},
	}
	if warning := pushMetadata(ctx, pushers, t, remote.ID, merged); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}

	return result
}

// pendingUploads counts the media files a real run would upload, without
// uploading them.
func (i *Importer) pendingUploads(local localstore.LocalItem) (int, error) {
	names, err := media.ListUploadable(localstore.MediaDir(local.Dir))
	if err != nil {
		return 0, err
	}

	pending := 0
	for _, name := range names {
		if local.MediaMap.Uploads[name] == "" {
			pending++
		}
	}
	return pending, nil
}

// importSiteOptions merges every site-wide group file into one bag and
// pushes it back.  Failure degrades to a run-level warning.
func (i *Importer) importSiteOptions(ctx context.Context, summary *Summary) {
	groups, err := i.Store.ReadSiteGroups()
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("couldn't read site groups: %v", err))
		return
	}
	if len(groups) == 0 {
		return
	}

	merged := mergeMetadata(groups, nil)
	names := maps.Keys(groups)
	slices.Sort(names)
	summary.SiteGroups = append(summary.SiteGroups, names...)

	if i.DryRun {
		return
	}

	octx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := i.API.SetSiteOptions(octx, merged); err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("site options push failed: %v", err))
	}
}

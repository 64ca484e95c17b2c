package syncer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dwrenner/wp-sync/localstore"
	"github.com/dwrenner/wp-sync/media"
	"github.com/dwrenner/wp-sync/plugins"
	"github.com/dwrenner/wp-sync/wordpress"
)

// Exporter pulls a site's items, assets, plugin metadata and options into
// the local store.
type Exporter struct {
	API     *wordpress.API
	Store   *localstore.Store
	Workers int

	// Statuses filters which items are exported; empty means publish+draft.
	Statuses []string

	Logger *log.Logger

	// state accumulated across items:
	autoDiscovered map[string]plugins.Descriptor
}

func (e *Exporter) statuses() []string {
	if len(e.Statuses) == 0 {
		return []string{"publish", "draft"}
	}
	return e.Statuses
}

// Export runs one whole export.  Only setup failures (unreachable backend,
// bad store path) abort the run; item and asset failures are accumulated in
// the summary.
func (e *Exporter) Export(ctx context.Context) (*Summary, error) {
	summary := &Summary{Site: e.Store.Site, Mode: "export"}
	e.autoDiscovered = map[string]plugins.Descriptor{}

	// connectivity check; a failure here is unrecoverable.
	uctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	user, err := e.API.CurrentUser(uctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("syncer: couldn't reach site %s: %w", e.API.BaseURI, err)
	}
	e.Logger.Printf("Logged in to %s as '%s'...\n", e.API.BaseURI.Host, user.Name)

	descriptors := e.detectPlugins(ctx, summary)

	manifest := localstore.Manifest{
		Site:       e.Store.Site,
		ExportedAt: time.Now().UTC(),
	}

	for _, t := range []wordpress.ItemType{wordpress.PostItem, wordpress.PageItem} {
		e.Logger.Printf("Listing %s...\n", t.Collection())
		items, err := e.API.ListAllItems(ctx, t, e.statuses())
		if err != nil {
			return nil, fmt.Errorf("syncer: couldn't list %s: %w", t.Collection(), err)
		}
		e.Logger.Printf("...found %d %s.\n", len(items), t.Collection())

		bar := phaseBar(t.Collection(), len(items))
		for _, item := range items {
			result := e.exportItem(ctx, descriptors, item)
			summary.add(result)
			if !result.Failed() {
				manifest.Items = append(manifest.Items, localstore.ManifestItem{
					Type:   t.Collection(),
					Slug:   result.Slug,
					Groups: result.Groups,
				})
			}
			bar.bar.Increment()
		}
		bar.wait()
	}

	e.exportSiteOptions(ctx, descriptors, summary)

	manifest.Plugins = e.manifestPlugins(descriptors)
	manifest.SiteGroups = summary.SiteGroups
	if err := e.Store.WriteManifest(manifest); err != nil {
		return nil, fmt.Errorf("syncer: couldn't write manifest: %w", err)
	}

	return summary, nil
}

// detectPlugins asks the site for its installed plugins.  This needs an
// administrator account; when it fails we log it and fall back to pure
// auto-discovery.
func (e *Exporter) detectPlugins(ctx context.Context, summary *Summary) []plugins.Descriptor {
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	installed, err := e.API.ListPlugins(pctx, wordpress.ListPluginsQuery{})
	if err != nil {
		e.Logger.Printf("Couldn't list plugins (%v); metadata grouping will rely on auto-discovery.\n", err)
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("plugin detection failed: %v", err))
		return nil
	}

	descriptors := make([]plugins.Descriptor, 0, len(installed))
	for _, p := range installed {
		descriptors = append(descriptors, plugins.NewDescriptor(p.Slug(), p.Name, p.Version))
	}
	e.Logger.Printf("Detected %d installed plugins.\n", len(descriptors))

	return descriptors
}

// exportItem processes one item start to finish: fetch-fresh content was
// already delivered by the listing; extract and download its assets, rewrite
// the body, classify its metadata, write the item directory.
func (e *Exporter) exportItem(ctx context.Context, descriptors []plugins.Descriptor, item wordpress.Item) ItemResult {
	result := ItemResult{
		Collection: item.ItemType.Collection(),
		Slug:       item.Slug,
		Action:     "export",
	}

	if result.Slug == "" {
		slug, err := localstore.Canonicalise(item.Title.Rendered)
		if err != nil {
			result.Err = fmt.Errorf("syncer: item %d has no usable slug: %w", item.ID, err)
			return result
		}
		result.Slug = slug
	}

	dir := e.Store.ItemDir(result.Collection, result.Slug)

	mapping, err := media.LoadMapping(localstore.MappingPath(dir))
	if err != nil {
		result.Err = fmt.Errorf("syncer: couldn't load media mapping: %w", err)
		return result
	}

	transfer := &media.Transfer{
		Client:  e.API.Client,
		Workers: e.Workers,
		Progress: func(msg string) {
			result.Warnings = append(result.Warnings, msg)
		},
	}

	content := item.BodyContent()
	urls := media.ExtractAssetURLs(content, e.API.Origin())

	downloaded, err := transfer.DownloadAll(ctx, urls, localstore.MediaDir(dir), mapping)
	result.MediaTransferred = downloaded
	if err != nil {
		result.Err = fmt.Errorf("syncer: media download aborted: %w", err)
		return result
	}

	rewritten := media.RewriteToLocal(content, mapping)

	classification := plugins.Classify(item.Meta, descriptors, plugins.MetaReserved)
	for _, d := range classification.AutoDiscovered {
		e.autoDiscovered[d.Slug] = d
	}
	result.Groups = classification.GroupNames()

	groups := make(map[string]map[string]any, len(classification.Groups))
	for name, bag := range classification.Groups {
		groups[name] = bag
	}

	local := localstore.LocalItem{
		Dir: dir,
		Item: localstore.ItemFile{
			ID:         item.ID,
			Slug:       result.Slug,
			Type:       item.ItemType.String(),
			Status:     item.Status,
			Title:      item.Title.Rendered,
			Excerpt:    item.Excerpt.Rendered,
			Link:       item.Link,
			Categories: item.Categories,
			Tags:       item.Tags,
			Parent:     item.Parent,
			MenuOrder:  item.MenuOrder,
			Ungrouped:  classification.Remaining,
		},
		Content:  rewritten,
		Groups:   groups,
		MediaMap: mapping,
	}

	if err := e.Store.WriteItem(local, e.API.BaseURI); err != nil {
		result.Err = fmt.Errorf("syncer: couldn't write item: %w", err)
		return result
	}

	return result
}

// exportSiteOptions classifies the site-wide options bag and writes one
// group file per plugin.  Failures here degrade to warnings; options are a
// side dish next to the content itself.
func (e *Exporter) exportSiteOptions(ctx context.Context, descriptors []plugins.Descriptor, summary *Summary) {
	octx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	options, err := e.API.SiteOptions(octx)
	if err != nil {
		e.Logger.Printf("Couldn't fetch site options: %v\n", err)
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("site options fetch failed: %v", err))
		return
	}

	classification := plugins.Classify(options, descriptors, plugins.OptionReserved)
	for _, d := range classification.AutoDiscovered {
		e.autoDiscovered[d.Slug] = d
	}

	for _, name := range classification.GroupNames() {
		if err := e.Store.WriteSiteGroup(name, classification.Groups[name]); err != nil {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("site group %s: %v", name, err))
			continue
		}
		summary.SiteGroups = append(summary.SiteGroups, name)
	}
}

func (e *Exporter) manifestPlugins(descriptors []plugins.Descriptor) []localstore.ManifestPlugin {
	out := []localstore.ManifestPlugin{}
	for _, d := range descriptors {
		out = append(out, localstore.ManifestPlugin{
			Slug:     d.Slug,
			Name:     d.Name,
			Version:  d.Version,
			Prefixes: d.Prefixes,
		})
	}

	tokens := maps.Keys(e.autoDiscovered)
	slices.Sort(tokens)
	for _, token := range tokens {
		d := e.autoDiscovered[token]
		out = append(out, localstore.ManifestPlugin{
			Slug:           d.Slug,
			Prefixes:       d.Prefixes,
			AutoDiscovered: true,
		})
	}

	return out
}

// phaseBar is a small wrapper over mpb so export and import phases render
// the same way.
type progressBar struct {
	container *mpb.Progress
	bar       *mpb.Bar
}

func phaseBar(phaseName string, total int) progressBar {
	p := mpb.New(mpb.WithWidth(64))

	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("%s:", phaseName),
				decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d/%d) "),
			decor.NewPercentage("%d"),
			decor.Spinner([]string{" /", " -", " \\", " |"}),
		),
	)

	return progressBar{container: p, bar: bar}
}

func (p progressBar) wait() {
	p.container.Wait()
}

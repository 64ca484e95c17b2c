// Package localstore lays out the exported site as a file tree and reads it
// back for import.  Layout per site:
//
//	<store>/<site>/
//	  manifest.yaml
//	  site-plugins/<plugin>.yaml
//	  posts/<slug>/{content.html, content.md, item.yaml, media-map.yaml,
//	               plugins/<plugin>.yaml, media/...}
//	  pages/<slug>/...
package localstore

import (
	"time"

	"github.com/dwrenner/wp-sync/media"
)

// ItemFile is the YAML shape of item.yaml: the identity and type-specific
// fields of one content item, plus the metadata keys that matched no plugin.
type ItemFile struct {
	ID      int    `yaml:"id,omitempty"`
	Slug    string `yaml:"slug"`
	Type    string `yaml:"type"` // post, page
	Status  string `yaml:"status"`
	Title   string `yaml:"title"`
	Excerpt string `yaml:"excerpt,omitempty"`
	Link    string `yaml:"link,omitempty"`

	// posts only:
	Categories []int `yaml:"categories,omitempty"`
	Tags       []int `yaml:"tags,omitempty"`

	// pages only:
	Parent    int `yaml:"parent,omitempty"`
	MenuOrder int `yaml:"menu-order,omitempty"`

	// Metadata that matched no plugin but still looks plugin-owned.
	Ungrouped map[string]any `yaml:"ungrouped,omitempty"`
}

// LocalItem is one item directory, loaded or about to be written.
type LocalItem struct {
	// Dir is the absolute path of the item's directory.
	Dir string

	Item    ItemFile
	Content string

	// Groups maps plugin slug → that plugin's metadata keys.
	Groups map[string]map[string]any

	MediaMap *media.Mapping
}

// Manifest is the top-level summary of one export run.  Import consumes it
// to enumerate items and recover plugin descriptors without re-querying the
// remote API.
type Manifest struct {
	Site       string    `yaml:"site"`
	ExportedAt time.Time `yaml:"exported-at"`

	Items   []ManifestItem   `yaml:"items"`
	Plugins []ManifestPlugin `yaml:"plugins,omitempty"`

	// SiteGroups lists the plugin-level (site-wide) group files written
	// under site-plugins/.
	SiteGroups []string `yaml:"site-groups,omitempty"`
}

type ManifestItem struct {
	Type   string   `yaml:"type"` // posts, pages
	Slug   string   `yaml:"slug"`
	Groups []string `yaml:"groups,omitempty"`
}

type ManifestPlugin struct {
	Slug           string   `yaml:"slug"`
	Name           string   `yaml:"name,omitempty"`
	Version        string   `yaml:"version,omitempty"`
	Prefixes       []string `yaml:"prefixes,omitempty"`
	AutoDiscovered bool     `yaml:"auto-discovered,omitempty"`
}

const (
	manifestFilename = "manifest.yaml"
	contentFilename  = "content.html"
	markdownFilename = "content.md"
	itemFilename     = "item.yaml"
	groupsDirname    = "plugins"
	mediaDirname     = "media"
	siteGroupsDir    = "site-plugins"
)

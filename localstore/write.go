package localstore

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/dwrenner/wp-sync/internal/atomicfile"
	"github.com/dwrenner/wp-sync/media"
)

// Store is one site's corner of the local tree.
type Store struct {
	// Root is the top-level store path, e.g. ~/wordpress.
	Root string

	// Site is the slug of the site under Root.
	Site string

	// WriteMarkdown adds a readable content.md rendition next to each
	// exported body.
	WriteMarkdown bool
}

// SiteDir returns the directory holding this site's export.
func (s *Store) SiteDir() string {
	return path.Join(s.Root, s.Site)
}

// ItemDir returns the directory for one item.  collection is "posts" or
// "pages".
func (s *Store) ItemDir(collection string, slug string) string {
	return path.Join(s.SiteDir(), collection, slug)
}

// MediaDir returns the asset directory inside an item directory.
func MediaDir(itemDir string) string {
	return path.Join(itemDir, mediaDirname)
}

// MappingPath returns the media-map side file path for an item directory.
func MappingPath(itemDir string) string {
	return path.Join(itemDir, media.MapFilename)
}

// WriteItem persists one item directory: body, optional Markdown rendition,
// item.yaml, one file per plugin group, and the media mapping.  All writes
// are atomic replaces.
func (s *Store) WriteItem(item LocalItem, origin *url.URL) error {
	// Does local store exist?
	stat, err := os.Stat(s.Root)
	if err != nil {
		return fmt.Errorf("localstore: cannot stat '%s': %w", s.Root, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("localstore: local store path not a directory: '%s'", s.Root)
	}

	if err := os.MkdirAll(item.Dir, 0750); err != nil {
		return fmt.Errorf("localstore: couldn't create directory %s: %w", item.Dir, err)
	}

	if err := atomicfile.WriteFile(path.Join(item.Dir, contentFilename), []byte(item.Content), 0644); err != nil {
		return fmt.Errorf("localstore: couldn't write body file: %w", err)
	}

	if s.WriteMarkdown {
		markdown, err := markdownRendition(item.Content, origin)
		if err != nil {
			return fmt.Errorf("localstore: couldn't render Markdown: %w", err)
		}
		if err := atomicfile.WriteFile(path.Join(item.Dir, markdownFilename), []byte(markdown), 0644); err != nil {
			return fmt.Errorf("localstore: couldn't write Markdown file: %w", err)
		}
	}

	encoded, err := yaml.Marshal(item.Item)
	if err != nil {
		return fmt.Errorf("localstore: couldn't marshal item YAML: %w", err)
	}
	if err := atomicfile.WriteFile(path.Join(item.Dir, itemFilename), encoded, 0644); err != nil {
		return fmt.Errorf("localstore: couldn't write item file: %w", err)
	}

	for name, group := range item.Groups {
		encoded, err := yaml.Marshal(group)
		if err != nil {
			return fmt.Errorf("localstore: couldn't marshal group %s: %w", name, err)
		}
		dest := path.Join(item.Dir, groupsDirname, groupFilename(name))
		if err := atomicfile.WriteFile(dest, encoded, 0644); err != nil {
			return fmt.Errorf("localstore: couldn't write group file %s: %w", dest, err)
		}
	}

	if item.MediaMap != nil {
		if err := item.MediaMap.Write(MappingPath(item.Dir)); err != nil {
			return fmt.Errorf("localstore: couldn't write media mapping: %w", err)
		}
	}

	return nil
}

// WriteSiteGroup persists one plugin-level (site-wide) options group.
func (s *Store) WriteSiteGroup(name string, group map[string]any) error {
	encoded, err := yaml.Marshal(group)
	if err != nil {
		return fmt.Errorf("localstore: couldn't marshal site group %s: %w", name, err)
	}

	dest := path.Join(s.SiteDir(), siteGroupsDir, groupFilename(name))
	if err := atomicfile.WriteFile(dest, encoded, 0644); err != nil {
		return fmt.Errorf("localstore: couldn't write site group file %s: %w", dest, err)
	}

	return nil
}

// WriteManifest persists the run manifest at the site root.
func (s *Store) WriteManifest(m Manifest) error {
	encoded, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("localstore: couldn't marshal manifest: %w", err)
	}

	if err := atomicfile.WriteFile(path.Join(s.SiteDir(), manifestFilename), encoded, 0644); err != nil {
		return fmt.Errorf("localstore: couldn't write manifest: %w", err)
	}

	return nil
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// groupFilename maps a group name to its file.  Auto-discovered tokens can
// start with an underscore; that's a legal filename, so only genuinely
// unsafe characters are replaced.
func groupFilename(name string) string {
	return unsafeFilename.ReplaceAllString(name, "-") + ".yaml"
}

// GroupName is the inverse of groupFilename, modulo sanitisation.
func GroupName(filename string) string {
	return filepath.Base(filename[:len(filename)-len(filepath.Ext(filename))])
}

package localstore

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dwrenner/wp-sync/media"
)

// LoadManifest reads the manifest at the site root.  A missing manifest
// means the tree was never exported, which import treats as an unrecoverable
// setup failure.
func (s *Store) LoadManifest() (Manifest, error) {
	fullPath := path.Join(s.SiteDir(), manifestFilename)
	source, err := os.ReadFile(fullPath)
	if err != nil {
		return Manifest{}, fmt.Errorf("localstore: couldn't read manifest %s: %w", fullPath, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(source, &m); err != nil {
		return Manifest{}, fmt.Errorf("localstore: couldn't parse manifest %s: %w", fullPath, err)
	}

	return m, nil
}

// ReadItem loads one item directory.  The body and item files are required;
// their absence marks the item as malformed local state.
func (s *Store) ReadItem(collection string, slug string) (LocalItem, error) {
	dir := s.ItemDir(collection, slug)

	body, err := os.ReadFile(path.Join(dir, contentFilename))
	if err != nil {
		return LocalItem{}, fmt.Errorf("localstore: couldn't read body file for %s/%s: %w", collection, slug, err)
	}

	source, err := os.ReadFile(path.Join(dir, itemFilename))
	if err != nil {
		return LocalItem{}, fmt.Errorf("localstore: couldn't read item file for %s/%s: %w", collection, slug, err)
	}

	var itemFile ItemFile
	if err := yaml.Unmarshal(source, &itemFile); err != nil {
		return LocalItem{}, fmt.Errorf("localstore: couldn't parse item file for %s/%s: %w", collection, slug, err)
	}

	groups, err := readGroupsDir(path.Join(dir, groupsDirname))
	if err != nil {
		return LocalItem{}, fmt.Errorf("localstore: couldn't read groups for %s/%s: %w", collection, slug, err)
	}

	mapping, err := media.LoadMapping(MappingPath(dir))
	if err != nil {
		return LocalItem{}, fmt.Errorf("localstore: couldn't read media mapping for %s/%s: %w", collection, slug, err)
	}

	return LocalItem{
		Dir:      dir,
		Item:     itemFile,
		Content:  string(body),
		Groups:   groups,
		MediaMap: mapping,
	}, nil
}

// ListItemDirs returns the slugs present under one collection directory, in
// listing order.  A missing collection directory just means nothing of that
// type was exported.
func (s *Store) ListItemDirs(collection string) ([]string, error) {
	dir := path.Join(s.SiteDir(), collection)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: couldn't list %s: %w", dir, err)
	}

	slugs := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			slugs = append(slugs, entry.Name())
		}
	}

	return slugs, nil
}

// ReadSiteGroups loads every plugin-level options group file.
func (s *Store) ReadSiteGroups() (map[string]map[string]any, error) {
	return readGroupsDir(path.Join(s.SiteDir(), siteGroupsDir))
}

// readGroupsDir parses every .yaml group file in dir, keyed by group name.
// Group files are read in sorted order so a merge over them is
// deterministic.
func readGroupsDir(dir string) (map[string]map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: couldn't list group directory %s: %w", dir, err)
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	groups := map[string]map[string]any{}
	for _, name := range names {
		fullPath := filepath.Join(dir, name)
		source, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, fmt.Errorf("localstore: couldn't read group file %s: %w", fullPath, err)
		}

		var group map[string]any
		if err := yaml.Unmarshal(source, &group); err != nil {
			return nil, fmt.Errorf("localstore: couldn't parse group file %s: %w", fullPath, err)
		}

		groups[GroupName(name)] = group
	}

	return groups, nil
}

package localstore

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwrenner/wp-sync/media"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return &Store{
		Root: t.TempDir(),
		Site: "example-com",
	}
}

func testItem(dir string) LocalItem {
	mapping := media.NewMapping()
	mapping.Downloads["https://example.com/a.jpg"] = "a-12345678.jpg"

	return LocalItem{
		Dir: dir,
		Item: ItemFile{
			ID:         17,
			Slug:       "hello-world",
			Type:       "post",
			Status:     "publish",
			Title:      "Hello world!",
			Categories: []int{1},
			Ungrouped:  map[string]any{"custom_field": "kept"},
		},
		Content: `<p>Welcome.</p><img src="media/a-12345678.jpg">`,
		Groups: map[string]map[string]any{
			"seo-by-rank-math": {"rank_math_title": "Hello"},
		},
		MediaMap: mapping,
	}
}

func TestWriteItemReadItemRoundTrip(t *testing.T) {
	store := testStore(t)
	origin, _ := url.Parse("https://example.com")

	item := testItem(store.ItemDir("posts", "hello-world"))
	require.NoError(t, store.WriteItem(item, origin))

	loaded, err := store.ReadItem("posts", "hello-world")
	require.NoError(t, err)

	assert.Equal(t, item.Item, loaded.Item)
	assert.Equal(t, item.Content, loaded.Content)
	assert.Equal(t, item.Groups, loaded.Groups)
	assert.Equal(t, item.MediaMap.Downloads, loaded.MediaMap.Downloads)
}

func TestWriteItemMarkdownRendition(t *testing.T) {
	store := testStore(t)
	store.WriteMarkdown = true
	origin, _ := url.Parse("https://example.com")

	item := testItem(store.ItemDir("posts", "hello-world"))
	require.NoError(t, store.WriteItem(item, origin))

	markdown, err := os.ReadFile(filepath.Join(item.Dir, markdownFilename))
	require.NoError(t, err)
	assert.Contains(t, string(markdown), "Welcome.")
}

func TestWriteItemRequiresExistingRoot(t *testing.T) {
	store := &Store{Root: filepath.Join(t.TempDir(), "missing"), Site: "example-com"}
	origin, _ := url.Parse("https://example.com")

	err := store.WriteItem(testItem(store.ItemDir("posts", "x")), origin)
	assert.Error(t, err)
}

func TestReadItemMissingBody(t *testing.T) {
	store := testStore(t)

	_, err := store.ReadItem("posts", "never-exported")
	assert.Error(t, err)
}

func TestManifestRoundTrip(t *testing.T) {
	store := testStore(t)

	m := Manifest{
		Site:       "example-com",
		ExportedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Items: []ManifestItem{
			{Type: "posts", Slug: "hello-world", Groups: []string{"seo-by-rank-math"}},
			{Type: "pages", Slug: "about"},
		},
		Plugins: []ManifestPlugin{
			{Slug: "seo-by-rank-math", Name: "Rank Math", Version: "1.0", Prefixes: []string{"rank_math"}},
			{Slug: "mystery", Prefixes: []string{"mystery"}, AutoDiscovered: true},
		},
		SiteGroups: []string{"woocommerce"},
	}
	require.NoError(t, store.WriteManifest(m))

	loaded, err := store.LoadManifest()
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestLoadManifestMissing(t *testing.T) {
	store := testStore(t)

	_, err := store.LoadManifest()
	assert.Error(t, err)
}

func TestSiteGroupsRoundTrip(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.WriteSiteGroup("woocommerce", map[string]any{"wc_currency": "EUR"}))
	require.NoError(t, store.WriteSiteGroup("_genesis", map[string]any{"genesis_layout": "full"}))

	groups, err := store.ReadSiteGroups()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, map[string]any{"wc_currency": "EUR"}, groups["woocommerce"])
	assert.Equal(t, map[string]any{"genesis_layout": "full"}, groups["_genesis"])
}

func TestListItemDirs(t *testing.T) {
	store := testStore(t)
	require.NoError(t, os.MkdirAll(store.ItemDir("posts", "a-post"), 0750))
	require.NoError(t, os.MkdirAll(store.ItemDir("posts", "b-post"), 0750))

	slugs, err := store.ListItemDirs("posts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a-post", "b-post"}, slugs)

	pages, err := store.ListItemDirs("pages")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestCanonicalise(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":        "hello-world",
		"  Spaced   out  ":     "spaced-out",
		"Ünïcödé & Friends":    "n-c-d-friends",
		"already-fine-slug":    "already-fine-slug",
	}
	for input, want := range cases {
		got, err := Canonicalise(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := Canonicalise("!")
	assert.Error(t, err)
}

package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAPI(t *testing.T, handler http.Handler) *API {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api, err := NewAPI(server.URL, "admin", "app-password")
	require.NoError(t, err)
	api.Client = server.Client()
	return api
}

func TestNewAPIValidation(t *testing.T) {
	_, err := NewAPI("", "admin", "pw")
	assert.Error(t, err)

	_, err = NewAPI("example.com", "", "pw")
	assert.Error(t, err)

	_, err = NewAPI("example.com", "admin", "")
	assert.Error(t, err)

	api, err := NewAPI("example.com/", "admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", api.BaseURI.String())
	assert.Equal(t, "https://example.com", api.Origin())
}

func TestListAllItemsPagination(t *testing.T) {
	var sawAuth bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		assert.Equal(t, "edit", r.URL.Query().Get("context"))
		assert.Equal(t, "publish,draft", r.URL.Query().Get("status"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		username, password, ok := r.BasicAuth()
		sawAuth = ok && username == "admin" && password == "app-password"

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-WP-TotalPages", "2")
		fmt.Fprintf(w, `[{"id":%d,"slug":"item-%d","status":"publish"}]`, page, page)
	})

	api := testAPI(t, handler)

	items, err := api.ListAllItems(context.Background(), PostItem, []string{"publish", "draft"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "item-1", items[0].Slug)
	assert.Equal(t, "item-2", items[1].Slug)
	assert.Equal(t, PostItem, items[0].ItemType)
	assert.True(t, sawAuth)
}

func TestFindItemBySlug(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wp-json/wp/v2/pages", r.URL.Path)
		if r.URL.Query().Get("slug") == "about" {
			fmt.Fprint(w, `[{"id":7,"slug":"about","status":"publish"}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	})

	api := testAPI(t, handler)

	item, err := api.FindItemBySlug(context.Background(), PageItem, "about")
	require.NoError(t, err)
	assert.Equal(t, 7, item.ID)
	assert.Equal(t, PageItem, item.ItemType)

	_, err = api.FindItemBySlug(context.Background(), PageItem, "no-such-page")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetItemNotFound(t *testing.T) {
	api := testAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := api.GetItem(context.Background(), PostItem, GetItemQuery{ID: 999})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateItem(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello-world", payload["slug"])
		assert.Equal(t, "Hello world!", payload["title"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":41,"slug":"hello-world","status":"draft"}`)
	})

	api := testAPI(t, handler)

	item, err := api.CreateItem(context.Background(), PostItem, ItemPayload{
		Slug:  "hello-world",
		Title: "Hello world!",
	})
	require.NoError(t, err)
	assert.Equal(t, 41, item.ID)
}

func TestUpdateItemMetaPayload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wp-json/wp/v2/posts/41", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		meta, ok := payload["meta"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Hello", meta["rank_math_title"])

		fmt.Fprint(w, `{"id":41,"slug":"hello-world"}`)
	})

	api := testAPI(t, handler)

	item, err := api.UpdateItem(context.Background(), PostItem, 41, ItemPayload{
		Meta: map[string]any{"rank_math_title": "Hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, 41, item.ID)
}

func TestUploadAsset(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wp-json/wp/v2/media", r.URL.Path)
		assert.Equal(t, `attachment; filename="pic-deadbeef.png"`, r.Header.Get("Content-Disposition"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), data)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":88,"source_url":"https://example.com/wp-content/uploads/pic.png"}`)
	})

	api := testAPI(t, handler)

	attachment, err := api.UploadAsset(context.Background(), "pic-deadbeef.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 88, attachment.ID)
	assert.Equal(t, "https://example.com/wp-content/uploads/pic.png", attachment.SourceURL)
}

func TestUploadAssetRejectsMissingSourceURL(t *testing.T) {
	api := testAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":88}`)
	}))

	_, err := api.UploadAsset(context.Background(), "pic.png", "image/png", []byte("x"))
	assert.Error(t, err)
}

func TestSiteOptionsRoundTrip(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wp-json/wp/v2/settings", r.URL.Path)
		if r.Method == http.MethodPost {
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "EUR", payload["wc_currency"])
		}
		fmt.Fprint(w, `{"wc_currency":"EUR","blogname":"Example"}`)
	})

	api := testAPI(t, handler)

	options, err := api.SiteOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EUR", options["wc_currency"])

	err = api.SetSiteOptions(context.Background(), map[string]any{"wc_currency": "EUR"})
	require.NoError(t, err)
}

func TestListPlugins(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wp-json/wp/v2/plugins", r.URL.Path)
		fmt.Fprint(w, `[{"plugin":"seo-by-rank-math/rank-math","name":"Rank Math SEO","status":"active","version":"1.0"}]`)
	})

	api := testAPI(t, handler)

	installed, err := api.ListPlugins(context.Background(), ListPluginsQuery{})
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, "seo-by-rank-math", installed[0].Slug())
}

func TestListPluginsForbidden(t *testing.T) {
	api := testAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := api.ListPlugins(context.Background(), ListPluginsQuery{})
	assert.ErrorContains(t, err, "authentication failed")
}

func TestCurrentUser(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wp-json/wp/v2/users/me", r.URL.Path)
		fmt.Fprint(w, `{"id":1,"name":"admin","slug":"admin"}`)
	})

	api := testAPI(t, handler)

	user, err := api.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Name)
}

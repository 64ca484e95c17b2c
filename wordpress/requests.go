package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// ErrNotFound is returned when the remote has no item matching the query.
// Callers branch on it during import reconciliation, so it's a sentinel
// rather than a formatted error.
var ErrNotFound = errors.New("wordpress: not found")

func (api *API) GetItem(ctx context.Context, t ItemType, opts GetItemQuery) (*Item, error) {
	ep, err := api.itemByIDEndpoint(t, opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get item endpoint: %w", err)
	}

	body, _, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't perform request: %w", err)
	}

	var item Item

	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}
	item.ItemType = t

	return &item, nil
}

// ListItems fetches one page of items.  The second return value is the total
// number of pages the server reports via X-WP-TotalPages.
func (api *API) ListItems(ctx context.Context, t ItemType, opts ListItemsQuery) ([]Item, int, error) {
	ep, err := api.itemsEndpoint(t, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("wordpress: couldn't get items endpoint: %w", err)
	}

	body, header, err := api.request(ctx, ep)
	if err != nil {
		return nil, 0, fmt.Errorf("wordpress: couldn't perform request: %w", err)
	}

	var items []Item

	if err := json.Unmarshal(body, &items); err != nil {
		return nil, 0, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}
	for i := range items {
		items[i].ItemType = t
	}

	totalPages := 1
	if tp := header.Get("X-WP-TotalPages"); tp != "" {
		totalPages, err = strconv.Atoi(tp)
		if err != nil {
			return nil, 0, fmt.Errorf("wordpress: X-WP-TotalPages was not an int: %w", err)
		}
	}

	return items, totalPages, nil
}

func (api *API) CreateItem(ctx context.Context, t ItemType, payload ItemPayload) (*Item, error) {
	ep, err := api.itemsEndpoint(t, ListItemsQuery{})
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get items endpoint: %w", err)
	}

	body, err := api.send(ctx, http.MethodPost, ep, payload)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't create %s: %w", t, err)
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}
	item.ItemType = t

	return &item, nil
}

func (api *API) UpdateItem(ctx context.Context, t ItemType, id int, payload ItemPayload) (*Item, error) {
	ep, err := api.itemByIDEndpoint(t, GetItemQuery{ID: id})
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get item endpoint: %w", err)
	}

	body, err := api.send(ctx, http.MethodPost, ep, payload)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't update %s %d: %w", t, id, err)
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}
	item.ItemType = t

	return &item, nil
}

// UploadAsset pushes one file into the WordPress media library.
func (api *API) UploadAsset(ctx context.Context, filename string, contentType string, data []byte) (*Attachment, error) {
	ep, err := api.mediaEndpoint()
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get media endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.String(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't instantiate http request: %w", err)
	}
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	req.Header.Set("Content-Type", contentType)
	req.Header.Add("Accept", "application/json, */*")
	req.SetBasicAuth(api.username, api.password)

	body, err := api.do(req)
	if err != nil {
		return nil, fmt.Errorf("wordpress: media upload failed: %w", err)
	}

	var attachment Attachment
	if err := json.Unmarshal(body, &attachment); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}
	if attachment.SourceURL == "" {
		return nil, fmt.Errorf("wordpress: media upload response missing source_url")
	}

	return &attachment, nil
}

// SiteOptions fetches the site-wide options bag.
func (api *API) SiteOptions(ctx context.Context) (map[string]any, error) {
	ep, err := api.settingsEndpoint()
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get settings endpoint: %w", err)
	}

	body, _, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't perform request: %w", err)
	}

	var options map[string]any
	if err := json.Unmarshal(body, &options); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}

	return options, nil
}

// SetSiteOptions pushes a (possibly partial) options bag back to the site.
func (api *API) SetSiteOptions(ctx context.Context, options map[string]any) error {
	ep, err := api.settingsEndpoint()
	if err != nil {
		return fmt.Errorf("wordpress: couldn't get settings endpoint: %w", err)
	}

	if _, err := api.send(ctx, http.MethodPost, ep, options); err != nil {
		return fmt.Errorf("wordpress: couldn't update site options: %w", err)
	}

	return nil
}

// ListPlugins returns the installed plugins.  Requires an administrator
// account; callers should degrade gracefully when it fails.
func (api *API) ListPlugins(ctx context.Context, opts ListPluginsQuery) ([]Plugin, error) {
	ep, err := api.pluginsEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get plugins endpoint: %w", err)
	}

	body, _, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't perform request: %w", err)
	}

	var plugins []Plugin
	if err := json.Unmarshal(body, &plugins); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}

	return plugins, nil
}

// CurrentUser returns the logged-in user's information.
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.currentUserEndpoint()
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get current user endpoint: %w", err)
	}

	body, _, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't perform http request: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}

	return &user, nil
}

// request performs an authenticated GET and returns the body plus response
// headers (WordPress communicates pagination through headers).
func (api *API) request(ctx context.Context, url *url.URL) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("wordpress: couldn't instantiate http request: %w", err)
	}

	req.Header.Add("Accept", "application/json, */*")
	req.SetBasicAuth(api.username, api.password)

	response, err := api.Client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("wordpress: couldn't perform http request: %w", err)
	}

	body, err := readBody(response)
	if err != nil {
		return nil, nil, err
	}

	if err := checkStatus(response, url); err != nil {
		return nil, nil, err
	}

	return body, response.Header, nil
}

// send performs an authenticated POST with a JSON payload.
func (api *API) send(ctx context.Context, method string, url *url.URL, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url.String(), bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't instantiate http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json, */*")
	req.SetBasicAuth(api.username, api.password)

	return api.do(req)
}

func (api *API) do(req *http.Request) ([]byte, error) {
	response, err := api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't perform http request: %w", err)
	}

	body, err := readBody(response)
	if err != nil {
		return nil, err
	}

	if err := checkStatus(response, req.URL); err != nil {
		return nil, err
	}

	return body, nil
}

func readBody(response *http.Response) ([]byte, error) {
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't read http response body: %w", err)
	}

	if err := response.Body.Close(); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't close response body: %w", err)
	}

	return body, nil
}

func checkStatus(response *http.Response, url *url.URL) error {
	switch response.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPartialContent, http.StatusNoContent, http.StatusResetContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("wordpress: authentication failed: %s", response.Status)
	case http.StatusBadRequest:
		return fmt.Errorf("wordpress: request rejected: %s", response.Status)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("wordpress: service is not available: %s", response.Status)
	case http.StatusInternalServerError:
		return fmt.Errorf("wordpress: internal server error: %s", response.Status)
	}

	return fmt.Errorf("wordpress: unknown HTTP response status: %s: %s", response.Status, url.String())
}

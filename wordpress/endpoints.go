package wordpress

import (
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
)

const restBase = "/wp-json/wp/v2"

// itemsEndpoint returns the API endpoint to list posts or pages:
// https://developer.wordpress.org/rest-api/reference/posts/#list-posts
func (a *API) itemsEndpoint(t ItemType, opts ListItemsQuery) (*url.URL, error) {
	ep, err := a.resolveEndpoint(fmt.Sprintf("%s/%s", restBase, t.Collection()))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// itemByIDEndpoint returns the API endpoint for one post or page:
// https://developer.wordpress.org/rest-api/reference/posts/#retrieve-a-post
func (a *API) itemByIDEndpoint(t ItemType, opts GetItemQuery) (*url.URL, error) {
	if opts.ID < 1 {
		return nil, fmt.Errorf("wordpress: please provide ID to get item by ID")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("%s/%s/%d", restBase, t.Collection(), opts.ID))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// mediaEndpoint returns the API endpoint for uploading an attachment:
// https://developer.wordpress.org/rest-api/reference/media/#create-a-media-item
func (a *API) mediaEndpoint() (*url.URL, error) {
	return a.resolveEndpoint(restBase + "/media")
}

// settingsEndpoint returns the API endpoint for site-wide options:
// https://developer.wordpress.org/rest-api/reference/settings/
func (a *API) settingsEndpoint() (*url.URL, error) {
	return a.resolveEndpoint(restBase + "/settings")
}

// pluginsEndpoint returns the API endpoint to list installed plugins:
// https://developer.wordpress.org/rest-api/reference/plugins/#list-plugins
func (a *API) pluginsEndpoint(opts ListPluginsQuery) (*url.URL, error) {
	ep, err := a.resolveEndpoint(restBase + "/plugins")
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// currentUserEndpoint returns the API endpoint to query the logged-in user,
// which doubles as our connectivity and credentials check:
// https://developer.wordpress.org/rest-api/reference/users/#retrieve-a-user-2
func (a *API) currentUserEndpoint() (*url.URL, error) {
	return a.resolveEndpoint(restBase + "/users/me")
}

// Do a bit of error checking on endpoint format, and return it relative to the base URI.
func (a *API) resolveEndpoint(endpoint string) (*url.URL, error) {
	baseUri := a.BaseURI

	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("wordpress: failed to parse endpoint ref: %w", err)
	}

	return baseUri.ResolveReference(ref), nil
}

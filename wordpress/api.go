package wordpress

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func NewAPI(site string, username string, appPassword string) (*API, error) {

	if site == "" {
		return &API{}, fmt.Errorf("wordpress: configure your site URL with --site")
	}
	if username == "" {
		return &API{}, fmt.Errorf("wordpress: configure your WordPress username with --auth-username")
	}
	if appPassword == "" {
		return &API{}, fmt.Errorf("wordpress: application password is empty, please check auth-password-cmd")
	}

	if !strings.Contains(site, "://") {
		site = "https://" + site
	}

	u, err := url.ParseRequestURI(strings.TrimRight(site, "/"))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse site URL: %w", err)
	}

	a := &API{
		BaseURI:  u,
		username: username,
		password: appPassword,
	}
	a.Client = &http.Client{}

	return a, nil
}

type API struct {
	// The base URL of the WordPress site, e.g. https://example.com
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// Auth info: username + application password, sent as HTTP Basic.
	username, password string
}

// Origin returns the scheme://host portion of the site URL.  The media
// extractor uses it to decide which asset references count as site-owned.
func (api *API) Origin() string {
	return fmt.Sprintf("%s://%s", api.BaseURI.Scheme, api.BaseURI.Host)
}

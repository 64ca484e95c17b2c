package localstore

import (
	"fmt"
	"net/url"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdplugin "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// markdownRendition converts an exported HTML body to GitHub-flavoured
// Markdown.  Purely a convenience for reading exports with local tools;
// import always works from the HTML body file.
func markdownRendition(content string, origin *url.URL) (string, error) {
	domain := ""
	scheme := "https"
	if origin != nil {
		domain = origin.Host
		scheme = origin.Scheme
	}

	// md.NewConverter only accepts a hostname, not a base URI, so scheme
	// resolution happens in GetAbsoluteURL.  Adapted from
	// https://github.com/JohannesKaufmann/html-to-markdown/issues/44
	opt := &md.Options{
		GetAbsoluteURL: func(selec *goquery.Selection, rawURL string, domain string) string {
			if domain == "" {
				return rawURL
			}

			u, err := url.Parse(rawURL)
			if err != nil {
				// we can't do anything with this url because it is invalid
				return rawURL
			}

			if u.Scheme == "data" {
				// this is a data uri (for example an inline base64 image)
				return rawURL
			}

			if u.Scheme == "" {
				u.Scheme = scheme
			}
			if u.Host == "" {
				u.Host = domain
			}

			return u.String()
		},
	}

	converter := md.NewConverter(domain, true, opt)
	// Github flavoured Markdown knows about tables 👍
	converter.Use(mdplugin.GitHubFlavored())

	markdown, err := converter.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("localstore: failed to convert to Markdown: %w", err)
	}

	return markdown, nil
}

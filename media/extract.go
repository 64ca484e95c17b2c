// Package media discovers asset references in rendered content, transfers
// them between the remote library and a local directory, and rewrites
// content to point at the correct location in each direction.
package media

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// Gutenberg encodes block attributes as JSON inside HTML comments, e.g.
// <!-- wp:image {"id":42,"url":"https://..."} -->
var blockMarkerPattern = regexp.MustCompile(`<!--\s*wp:(?:image|cover|video|audio|file|media-text)\s+(\{.*?\})\s*/?-->`)

// url(...) references inside inline styles and <style> blocks.
var styleURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")\s]+)['"]?\s*\)`)

// ExtractAssetURLs scans rendered content for asset references and returns a
// deduplicated, order-stable list of URLs.  Four reference shapes are
// recognised: direct src attributes, srcset candidate lists, Gutenberg block
// markers, and style background references.
//
// When origin is non-empty, only URLs that resolve to the same host (or
// can't be resolved to a host at all, and are therefore assumed local) are
// kept, so third-party imagery isn't treated as owned content.
//
// Pure function: no I/O, and identical input yields identical output.
func ExtractAssetURLs(content string, origin string) []string {
	seen := map[string]bool{}
	out := []string{}
	keep := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "#") {
			return
		}
		if !sameOrigin(raw, origin) {
			return
		}
		if !seen[raw] {
			seen[raw] = true
			out = append(out, raw)
		}
	}

	// Block markers first: the comment precedes the tag it wraps, and we
	// want document order.
	for _, match := range blockMarkerPattern.FindAllStringSubmatch(content, -1) {
		if u := gjson.Get(match[1], "url"); u.Exists() {
			keep(u.String())
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err == nil {
		doc.Find("img, source, video, audio").Each(func(_ int, sel *goquery.Selection) {
			if src, ok := sel.Attr("src"); ok {
				keep(src)
			}
			if srcset, ok := sel.Attr("srcset"); ok {
				// Each comma-separated candidate is "URL [descriptor]"; the
				// URL is the first whitespace-delimited token.
				for _, candidate := range strings.Split(srcset, ",") {
					fields := strings.Fields(candidate)
					if len(fields) > 0 {
						keep(fields[0])
					}
				}
			}
		})

		doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
			style, _ := sel.Attr("style")
			for _, match := range styleURLPattern.FindAllStringSubmatch(style, -1) {
				keep(match[1])
			}
		})

		doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
			for _, match := range styleURLPattern.FindAllStringSubmatch(sel.Text(), -1) {
				keep(match[1])
			}
		})
	}

	return out
}

// sameOrigin reports whether raw should be treated as owned by origin.
// Relative URLs can't be resolved to a host and are assumed local.
func sameOrigin(raw string, origin string) bool {
	if origin == "" {
		return true
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return true
	}

	o, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return strings.EqualFold(u.Host, o.Host)
}

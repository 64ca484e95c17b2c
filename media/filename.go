package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// AssetFilename derives the stable local filename for a remote asset URL:
// the URL path's basename, sanitised, suffixed with a short hash of the full
// URL.  The hash keeps two different URLs sharing a basename from colliding,
// and the same URL always maps to the same name, which is what makes
// skip-if-exists resumption safe.
func AssetFilename(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	short := hex.EncodeToString(sum[:])[:8]

	base := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		base = u.Path
	} else if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = path.Base(base)

	ext := strings.ToLower(path.Ext(base))
	name := strings.TrimSuffix(base, path.Ext(base))

	name = nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
	name = strings.Trim(name, "-")
	if len(name) > 80 {
		name = strings.Trim(name[:80], "-")
	}
	if name == "" {
		name = "asset"
	}

	if ext != "" && nonAlphanumeric.MatchString(ext[1:]) {
		ext = ""
	}

	return fmt.Sprintf("%s-%s%s", name, short, ext)
}

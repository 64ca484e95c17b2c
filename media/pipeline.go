package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/dwrenner/wp-sync/internal/atomicfile"
	"github.com/dwrenner/wp-sync/wordpress"
)

// LocalRefPrefix is how rewritten content refers to a downloaded asset,
// relative to the item's directory.
const LocalRefPrefix = "media/"

// allowedPattern is the extension allow-list for import uploads.  Anything
// else sitting in an item's media directory is ignored.
const allowedPattern = "*.{jpg,jpeg,png,gif,webp,avif,svg,bmp,ico,mp4,webm,mp3,ogg,wav,pdf}"

// AssetUploader pushes one file to the remote media library.  *wordpress.API
// satisfies it; tests substitute fakes.
type AssetUploader interface {
	UploadAsset(ctx context.Context, filename string, contentType string, data []byte) (*wordpress.Attachment, error)
}

// Transfer moves assets between the remote site and a local media directory.
// Individual file failures are reported through Progress and skipped; only
// cancellation aborts a batch.
type Transfer struct {
	Client  *http.Client
	Workers int

	DownloadTimeout time.Duration
	UploadTimeout   time.Duration

	// Progress receives one line per notable per-file event.  May be nil.
	// Workers run concurrently, so invocations are serialised; the callback
	// itself needs no locking.
	Progress func(msg string)

	// mu guards the mapping, the transfer counters and Progress delivery
	// across a batch's workers.
	mu sync.Mutex
}

func (t *Transfer) report(format string, args ...any) {
	if t.Progress == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Progress(fmt.Sprintf(format, args...))
}

func (t *Transfer) workers() int {
	if t.Workers < 1 {
		return 1
	}
	return t.Workers
}

func (t *Transfer) downloadTimeout() time.Duration {
	if t.DownloadTimeout <= 0 {
		return 15 * time.Second
	}
	return t.DownloadTimeout
}

func (t *Transfer) uploadTimeout() time.Duration {
	if t.UploadTimeout <= 0 {
		// uploads carry larger payloads
		return 60 * time.Second
	}
	return t.UploadTimeout
}

// DownloadAll fetches every URL not already present locally into destDir and
// records it in the mapping.  Hash-derived filenames make the operation
// idempotent: a second run over unchanged content downloads nothing.
// Returns the number of files actually fetched.
func (t *Transfer) DownloadAll(ctx context.Context, urls []string, destDir string, m *Mapping) (int, error) {
	if len(urls) == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return 0, fmt.Errorf("media: couldn't create directory %s: %w", destDir, err)
	}

	downloaded := 0

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(t.workers())

	for _, rawURL := range urls {
		rawURL := rawURL
		grp.Go(func() error {
			filename := AssetFilename(rawURL)
			dest := filepath.Join(destDir, filename)

			if _, err := os.Stat(dest); err == nil {
				// already fetched on a previous (possibly interrupted) run
				t.mu.Lock()
				m.Downloads[rawURL] = filename
				t.mu.Unlock()
				return nil
			}

			if err := t.fetch(gctx, rawURL, dest); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				// non-fatal: omit from the mapping, leave the reference
				// unrewritten, carry on with the rest of the batch.
				t.report("download failed, skipping %s: %v", rawURL, err)
				return nil
			}

			t.mu.Lock()
			m.Downloads[rawURL] = filename
			downloaded++
			t.mu.Unlock()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return downloaded, fmt.Errorf("media: download batch aborted: %w", err)
	}

	return downloaded, nil
}

func (t *Transfer) fetch(ctx context.Context, rawURL string, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, t.downloadTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("media: couldn't instantiate http request: %w", err)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	response, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("media: couldn't perform http request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("media: unexpected HTTP response status: %s", response.Status)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("media: couldn't read response body: %w", err)
	}

	if err := atomicfile.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("media: couldn't write asset file: %w", err)
	}

	return nil
}

// ListUploadable returns the filenames in mediaDir that pass the extension
// allow-list, sorted.  A missing directory just means there's nothing to
// upload.
func ListUploadable(mediaDir string) ([]string, error) {
	entries, err := os.ReadDir(mediaDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("media: couldn't list media directory %s: %w", mediaDir, err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := doublestar.Match(allowedPattern, strings.ToLower(entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("media: bad allow-list pattern: %w", err)
		}
		if ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// UploadAll pushes every qualifying local file not yet uploaded and records
// its new remote URL in the mapping.  Same non-fatal per-file policy as
// DownloadAll.  Returns the number of files actually uploaded.
func (t *Transfer) UploadAll(ctx context.Context, mediaDir string, uploader AssetUploader, m *Mapping) (int, error) {
	names, err := ListUploadable(mediaDir)
	if err != nil {
		return 0, err
	}

	// The skip check must finish reading the mapping before any worker can
	// start writing it.
	pending := make([]string, 0, len(names))
	for _, name := range names {
		if m.Uploads[name] != "" {
			// uploaded on a previous run; the recorded URL still stands
			continue
		}
		pending = append(pending, name)
	}

	uploaded := 0

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(t.workers())

	for _, name := range pending {
		name := name
		grp.Go(func() error {
			data, err := os.ReadFile(filepath.Join(mediaDir, name))
			if err != nil {
				t.report("couldn't read %s, skipping: %v", name, err)
				return nil
			}

			uctx, cancel := context.WithTimeout(gctx, t.uploadTimeout())
			defer cancel()

			attachment, err := uploader.UploadAsset(uctx, name, contentTypeFor(name), data)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				t.report("upload failed, skipping %s: %v", name, err)
				return nil
			}

			t.mu.Lock()
			m.Uploads[name] = attachment.SourceURL
			uploaded++
			t.mu.Unlock()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return uploaded, fmt.Errorf("media: upload batch aborted: %w", err)
	}

	return uploaded, nil
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// RewriteToLocal replaces every occurrence of each mapped URL with its local
// media/ reference.  Replacement is literal, so URLs containing regexp
// metacharacters can't misfire; longer URLs are replaced first so a URL
// that's a prefix of another doesn't clobber it.
func RewriteToLocal(content string, m *Mapping) string {
	for _, rawURL := range byLengthDesc(m.Downloads) {
		content = strings.ReplaceAll(content, rawURL, LocalRefPrefix+m.Downloads[rawURL])
	}
	return content
}

// RewriteToRemote replaces every local media/ reference with the uploaded
// asset's new remote URL.
func RewriteToRemote(content string, m *Mapping) string {
	refs := map[string]string{}
	for filename, remote := range m.Uploads {
		refs[LocalRefPrefix+filename] = remote
	}
	for _, ref := range byLengthDesc(refs) {
		content = strings.ReplaceAll(content, ref, refs[ref])
	}
	return content
}

func byLengthDesc(mapped map[string]string) []string {
	keys := make([]string, 0, len(mapped))
	for k := range mapped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

package syncer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dwrenner/wp-sync/wordpress"
)

// MetadataPusher is one way of getting a flat metadata bag onto a remote
// item.  Pushers are tried in order; a failure moves on to the next.
type MetadataPusher interface {
	Name() string
	Push(ctx context.Context, t wordpress.ItemType, id int, meta map[string]any) error
}

// combinedPush sends the whole bag as a single item update.  Fast, but the
// backend rejects it when any key isn't registered for the REST API.
type combinedPush struct {
	api *wordpress.API
}

func (p combinedPush) Name() string { return "combined" }

func (p combinedPush) Push(ctx context.Context, t wordpress.ItemType, id int, meta map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := p.api.UpdateItem(ctx, t, id, wordpress.ItemPayload{Meta: meta}); err != nil {
		return fmt.Errorf("syncer: combined metadata push failed: %w", err)
	}
	return nil
}

// perKeyPush is the narrower channel: one key per request, so a single
// rejected key doesn't sink the rest of the bag.  Slower, less expressive,
// but it's the fallback when the combined form bounces.
type perKeyPush struct {
	api *wordpress.API
}

func (p perKeyPush) Name() string { return "per-key" }

func (p perKeyPush) Push(ctx context.Context, t wordpress.ItemType, id int, meta map[string]any) error {
	keys := maps.Keys(meta)
	slices.Sort(keys)

	failed := 0
	for _, key := range keys {
		kctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := p.api.UpdateItem(kctx, t, id, wordpress.ItemPayload{
			Meta: map[string]any{key: meta[key]},
		})
		cancel()
		if err != nil {
			failed++
		}
	}

	if failed == len(keys) && failed > 0 {
		return fmt.Errorf("syncer: per-key metadata push failed for all %d keys", failed)
	}
	if failed > 0 {
		return fmt.Errorf("syncer: per-key metadata push failed for %d of %d keys", failed, len(keys))
	}
	return nil
}

// pushMetadata tries each strategy in order and returns a warning string if
// all of them are exhausted.  Metadata failure never fails the item: the
// content write already succeeded by the time this runs.
func pushMetadata(ctx context.Context, pushers []MetadataPusher, t wordpress.ItemType, id int, meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}

	var lastErr error
	for _, pusher := range pushers {
		if err := pusher.Push(ctx, t, id, meta); err != nil {
			lastErr = err
			continue
		}
		return ""
	}

	return fmt.Sprintf("metadata push exhausted all strategies: %v", lastErr)
}

// mergeMetadata flattens an item's exported group files plus its ungrouped
// bucket into one bag.  Groups are merged in sorted-name order; conflicts
// aren't expected since classification is exclusive by construction, but
// later groups win if one ever occurs.
func mergeMetadata(groups map[string]map[string]any, ungrouped map[string]any) map[string]any {
	merged := map[string]any{}

	names := maps.Keys(groups)
	slices.Sort(names)
	for _, name := range names {
		for key, value := range groups[name] {
			merged[key] = value
		}
	}
	for key, value := range ungrouped {
		merged[key] = value
	}

	return merged
}

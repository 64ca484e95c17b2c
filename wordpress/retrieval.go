package wordpress

import (
	"context"
	"fmt"
	"time"
)

// ListAllItems walks the paged listing until X-WP-TotalPages is exhausted.
// Items come back in the order the server enumerates them.
func (api *API) ListAllItems(ctx context.Context, t ItemType, statuses []string) ([]Item, error) {
	all := []Item{}

	query := ListItemsQuery{
		Context: "edit",
		Status:  statuses,
		PerPage: 100,
		Page:    1,
	}

	for {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		items, totalPages, err := api.ListItems(ctx, t, query)
		if err != nil {
			return nil, fmt.Errorf("wordpress: couldn't list %s page %d: %w", t.Collection(), query.Page, err)
		}

		all = append(all, items...)

		if query.Page >= totalPages {
			break
		}
		query.Page++
	}

	return all, nil
}

// FindItemBySlug looks up a single item by its slug, the only identifier
// that's stable across environments.  Returns ErrNotFound when the remote
// has no such item.
func (api *API) FindItemBySlug(ctx context.Context, t ItemType, slug string) (*Item, error) {
	if slug == "" {
		return nil, fmt.Errorf("wordpress: please provide a slug to search for")
	}

	query := ListItemsQuery{
		Context: "edit",
		Slug:    []string{slug},
		Status:  []string{"publish", "draft", "pending", "private"},
	}

	items, _, err := api.ListItems(ctx, t, query)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't search %s by slug: %w", t.Collection(), err)
	}

	for _, item := range items {
		if item.Slug == slug {
			found := item
			return &found, nil
		}
	}

	return nil, ErrNotFound
}

package wordpress

// ListItemsQuery defines the query parameters for:
// https://developer.wordpress.org/rest-api/reference/posts/#list-posts
//
// The pages listing (https://developer.wordpress.org/rest-api/reference/pages/#list-pages)
// takes the same shape, so we reuse it for both.
type ListItemsQuery struct {
	// Context determines which fields are present in the response.  "edit"
	// includes raw content and the meta bag, and requires authentication.
	Context string `url:"context,omitempty"`

	// Filter the results to items based on...
	Status  []string `url:"status,omitempty,comma"` // publish, draft, pending, private
	Slug    []string `url:"slug,omitempty,comma"`   // their slugs.
	Search  string   `url:"search,omitempty"`
	OrderBy string   `url:"orderby,omitempty"` // date, id, slug, title, ...

	// WordPress paginates with page numbers rather than cursors; the total
	// page count comes back in the X-WP-TotalPages response header.
	Page    int `url:"page,omitempty"`
	PerPage int `url:"per_page,omitempty"` // default 10, range 1-100
}

// GetItemQuery defines the query parameters for:
// https://developer.wordpress.org/rest-api/reference/posts/#retrieve-a-post
type GetItemQuery struct {
	ID int `url:"-"` // ID of the item; required

	Context string `url:"context,omitempty"`
}

// ListPluginsQuery defines the query parameters for:
// https://developer.wordpress.org/rest-api/reference/plugins/#list-plugins
type ListPluginsQuery struct {
	Status string `url:"status,omitempty"` // active, inactive
	Search string `url:"search,omitempty"`
}

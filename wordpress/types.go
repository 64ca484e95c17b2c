package wordpress

import "strings"

type ItemType int

const (
	PostItem ItemType = iota
	PageItem
)

func (t ItemType) String() string {
	switch t {
	case PageItem:
		return "page"
	default:
		return "post"
	}
}

// Collection returns the REST collection name, which doubles as the local
// directory name for items of this type.
func (t ItemType) Collection() string {
	switch t {
	case PageItem:
		return "pages"
	default:
		return "posts"
	}
}

// Rendered is how the REST API represents renderable fields.  Raw is only
// populated when the request was made with context=edit.
type Rendered struct {
	Rendered string `json:"rendered,omitempty"`
	Raw      string `json:"raw,omitempty"`
}

// See https://developer.wordpress.org/rest-api/reference/posts/.  Pages
// (https://developer.wordpress.org/rest-api/reference/pages/) share most of
// the shape, so one struct does for both; the page-only fields will simply be
// zero for posts and vice versa.
type Item struct {
	ID       int      `json:"id,omitempty"`
	Slug     string   `json:"slug,omitempty"`
	Status   string   `json:"status,omitempty"` // publish, draft, pending, private
	Type     string   `json:"type,omitempty"`
	Link     string   `json:"link,omitempty"`
	Date     string   `json:"date,omitempty"`
	Modified string   `json:"modified,omitempty"`
	Title    Rendered `json:"title,omitempty"`
	Content  Rendered `json:"content,omitempty"`
	Excerpt  Rendered `json:"excerpt,omitempty"`

	// posts only:
	Categories []int `json:"categories,omitempty"`
	Tags       []int `json:"tags,omitempty"`

	// pages only:
	Parent    int `json:"parent,omitempty"`
	MenuOrder int `json:"menu_order,omitempty"`

	// Flat key→value bag of registered metadata.  Only present when the
	// request was made with context=edit.
	Meta map[string]any `json:"meta,omitempty"`

	ItemType ItemType `json:"-"`
}

// BodyContent prefers the rendered representation, falling back to raw.  The
// media extractor works on rendered HTML.
func (i Item) BodyContent() string {
	if i.Content.Rendered != "" {
		return i.Content.Rendered
	}
	return i.Content.Raw
}

// ItemPayload is the request body for creating or updating an item.  The
// REST API accepts plain strings for the renderable fields.
type ItemPayload struct {
	Slug       string         `json:"slug,omitempty"`
	Status     string         `json:"status,omitempty"`
	Title      string         `json:"title,omitempty"`
	Content    string         `json:"content,omitempty"`
	Excerpt    string         `json:"excerpt,omitempty"`
	Categories []int          `json:"categories,omitempty"`
	Tags       []int          `json:"tags,omitempty"`
	Parent     int            `json:"parent,omitempty"`
	MenuOrder  int            `json:"menu_order,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Attachment is the response shape of a media upload.
type Attachment struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type,omitempty"`
}

// See https://developer.wordpress.org/rest-api/reference/users/#retrieve-a-user
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url,omitempty"`
}

// See https://developer.wordpress.org/rest-api/reference/plugins/.  The
// Plugin field is the "directory/file" identifier, e.g. "akismet/akismet".
type Plugin struct {
	Plugin  string `json:"plugin"`
	Name    string `json:"name"`
	Status  string `json:"status"` // active, inactive
	Version string `json:"version,omitempty"`
}

// Slug returns the plugin's directory name, the conventional identifier
// plugin authors derive their metadata key prefixes from.
func (p Plugin) Slug() string {
	if i := strings.Index(p.Plugin, "/"); i > 0 {
		return p.Plugin[:i]
	}
	return p.Plugin
}

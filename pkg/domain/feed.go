package domain

// Feed represents a feed source registered in the backend
type Feed struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FeedPreview is a read-only look at a feed fetched directly from its URL
type FeedPreview struct {
	Title       string
	Description string
	Link        string
	Items       []PreviewItem
	TotalItems  int
}

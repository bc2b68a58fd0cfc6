package domain

import "time"

// PreviewItem is a single entry of a feed preview
type PreviewItem struct {
	Title     string
	Link      string
	Summary   string
	Published time.Time
}

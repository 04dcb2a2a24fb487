package search

import "context"

// MediaItem is one playable search hit.
type MediaItem struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Thumbnail string `json:"thumbnail"`
}

// SearchResult is a page of search hits.
type SearchResult struct {
	Items         []MediaItem `json:"items"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

// MediaSearcher finds playable media for a free-text query.
type MediaSearcher interface {
	Search(ctx context.Context, query, pageToken string) (*SearchResult, error)
}

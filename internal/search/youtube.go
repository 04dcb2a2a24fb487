package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTubeClient queries the YouTube Data API v3 search endpoint.
type YouTubeClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewYouTubeClient creates a client. baseURL may be empty for the real API.
func NewYouTubeClient(apiKey, baseURL string) *YouTubeClient {
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	return &YouTubeClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type ytSearchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search performs a video search.
func (y *YouTubeClient) Search(ctx context.Context, query, pageToken string) (*SearchResult, error) {
	u, err := url.Parse(y.baseURL + "/search")
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("part", "snippet")
	q.Set("maxResults", "10")
	q.Set("type", "video")
	q.Set("q", query)
	q.Set("key", y.apiKey)
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube search returned status %d", resp.StatusCode)
	}

	var body ytSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode youtube response: %w", err)
	}

	result := &SearchResult{
		Items:         make([]MediaItem, 0, len(body.Items)),
		NextPageToken: body.NextPageToken,
	}
	for _, item := range body.Items {
		result.Items = append(result.Items, MediaItem{
			VideoID:   item.ID.VideoID,
			Title:     item.Snippet.Title,
			Channel:   item.Snippet.ChannelTitle,
			Thumbnail: item.Snippet.Thumbnails.Medium.URL,
		})
	}

	return result, nil
}

package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/services"
)

const (
	stageName = "acquire"

	// maxPerPage is the largest page the search endpoint accepts.
	maxPerPage = 15
)

// Clip describes a single downloadable stock video rendition.
type Clip struct {
	ID       int
	URL      string
	Duration float64
	Width    int
	Height   int
}

// Client talks to the Pexels video API.
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	baseURL        string
	apiKey         string
}

// New builds a client from provider configuration.
func New(cfg config.Pexels) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		downloadClient: &http.Client{Timeout: time.Duration(cfg.DownloadTimeout) * time.Second},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
	}
}

type videoFile struct {
	Link    string `json:"link"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Quality string `json:"quality"`
}

type searchResponse struct {
	Videos []struct {
		ID         int         `json:"id"`
		Duration   float64     `json:"duration"`
		VideoFiles []videoFile `json:"video_files"`
	} `json:"videos"`
}

// Search queries the video search endpoint and returns up to count
// clips with a rendition chosen for vertical output. An empty result
// set is reported as insufficient footage because the pipeline cannot
// proceed without source material.
func (c *Client) Search(ctx context.Context, query string, count int) ([]Clip, error) {
	if count < 1 {
		count = 1
	}
	if count > maxPerPage {
		count = maxPerPage
	}

	endpoint := c.baseURL + "/videos/search?" + url.Values{
		"query":       {query},
		"per_page":    {strconv.Itoa(count)},
		"orientation": {"portrait"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrProviderUnavailable, stageName, "search", "build request", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrProviderUnavailable, stageName, "search", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("search", resp)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, services.Wrap(services.ErrProviderUnavailable, stageName, "search", "decode response", err)
	}

	clips := make([]Clip, 0, len(parsed.Videos))
	for _, video := range parsed.Videos {
		best := pickRendition(video.VideoFiles)
		if best < 0 {
			continue
		}
		file := video.VideoFiles[best]
		clips = append(clips, Clip{
			ID:       video.ID,
			URL:      file.Link,
			Duration: video.Duration,
			Width:    file.Width,
			Height:   file.Height,
		})
	}
	if len(clips) == 0 {
		return nil, services.Wrap(services.ErrInsufficientFootage, stageName, "search", fmt.Sprintf("no footage found for query %q", query), nil)
	}
	return clips, nil
}

// pickRendition chooses a video file index, preferring portrait
// renditions with the highest resolution. Returns -1 when the video
// has no usable files.
func pickRendition(files []videoFile) int {
	best := -1
	bestScore := -1
	for i, file := range files {
		if file.Link == "" {
			continue
		}
		score := file.Width * file.Height
		if file.Height > file.Width {
			// Portrait sources crop cleanly to the output frame.
			score += 1 << 30
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

// Download streams a clip rendition to dest. The partially written
// file is removed when the transfer fails.
func (c *Client) Download(ctx context.Context, clip Clip, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clip.URL, nil)
	if err != nil {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "download", "build request", err)
	}

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "download", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus("download", resp)
	}

	out, err := os.Create(dest)
	if err != nil {
		return services.Wrap(services.ErrProviderUnavailable, stageName, "download", "create file", err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return services.Wrap(services.ErrProviderUnavailable, stageName, "download", "stream clip", err)
	}
	if written == 0 {
		_ = os.Remove(dest)
		return services.Wrap(services.ErrProviderUnavailable, stageName, "download", "provider returned empty clip", nil)
	}
	return nil
}

func classifyStatus(operation string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	detail := fmt.Sprintf("provider returned %s", resp.Status)
	if len(snippet) > 0 {
		detail += ": " + strings.TrimSpace(string(snippet))
	}

	marker := services.ErrProviderUnavailable
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		marker = services.ErrProviderAuth
	case http.StatusTooManyRequests:
		marker = services.ErrProviderQuota
	}
	return services.Wrap(marker, stageName, operation, detail, nil)
}

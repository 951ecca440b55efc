// Package transcript fetches YouTube video transcripts from the RapidAPI
// youtube-transcript3 vendor. One request in, one request out: no retry,
// no caching.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

const (
	defaultBaseURL = "https://youtube-transcript3.p.rapidapi.com"
	rapidAPIHost   = "youtube-transcript3.p.rapidapi.com"
)

// ErrNoTranscript means the vendor answered successfully but returned no
// transcript payload.
var ErrNoTranscript = errors.New("no transcript found for this video")

// videoIDPattern accepts the two known URL shapes. The captured id runs up
// to the first of &, newline, ? or #.
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)

// ExtractVideoID pulls the video identifier out of a YouTube watch or
// short-form URL. The second return is false when neither shape matches.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// StatusError is a non-success response from the transcript vendor.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transcript API request failed: %d", e.Code)
}

// Result is the vendor payload passed through to the caller. The transcript
// shape is vendor-defined (a string or a segment array) and is not
// reinterpreted here.
type Result struct {
	Transcript json.RawMessage `json:"transcript"`
	Title      string          `json:"title"`
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the transcript for a video id. A missing title defaults
// to "YouTube Video".
func (c *Client) Fetch(ctx context.Context, videoID string) (*Result, error) {
	reqURL := fmt.Sprintf("%s/youtubetranscript?video_id=%s", c.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", rapidAPIHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}

	if len(result.Transcript) == 0 || bytes.Equal(result.Transcript, []byte("null")) {
		return nil, ErrNoTranscript
	}
	if result.Title == "" {
		result.Title = "YouTube Video"
	}

	return &result, nil
}

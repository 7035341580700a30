// Package youtube fetches video captions and flattens them into plain text.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"studyquiz/internal/logger"
)

const (
	DefaultBaseURL = "https://www.youtube.com"

	reXMLTranscript = `<text start="([^"]*)" dur="([^"]*)"[^>]*>([^<]*)</text>`
)

// ErrNoTranscript means no caption track could be fetched for the video.
var ErrNoTranscript = errors.New("no transcript available")

var (
	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?]*)`),
		regexp.MustCompile(`youtube\.com/embed/([^&\n?]*)`),
		regexp.MustCompile(`youtube\.com/v/([^&\n?]*)`),
	}
	queryVPattern  = regexp.MustCompile(`[?&]v=([^&#\s]+)`)
	bareIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	xmlTranscript  = regexp.MustCompile(reXMLTranscript)
	whitespaceRuns = regexp.MustCompile(`\s+`)

	englishCodes = []string{"en", "en-US"}
)

// Segment is one caption line.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Track is one caption track listed on the watch page.
type Track struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

type Client struct {
	http    *http.Client
	baseURL string
	log     *logger.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another host serving watch pages.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		log:     logger.OrNop(log).With("component", "youtube.Client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VideoID resolves the video identifier from the common URL shapes, a raw v
// query parameter, or a bare identifier.
func VideoID(url string) (string, bool) {
	url = strings.TrimSpace(url)
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	if m := queryVPattern.FindStringSubmatch(url); m != nil {
		return m[1], true
	}
	if bareIDPattern.MatchString(url) {
		return url, true
	}
	return "", false
}

// Transcript returns the whitespace-normalised caption text of the video at
// url. It prefers the English track and falls back to any other track.
func (c *Client) Transcript(ctx context.Context, url string) (string, error) {
	id, ok := VideoID(url)
	if !ok {
		return "", fmt.Errorf("invalid YouTube URL %q", url)
	}

	segments, err := c.Segments(ctx, id)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	text := Clean(strings.Join(parts, " "))
	if text == "" {
		return "", ErrNoTranscript
	}
	return text, nil
}

// Segments fetches the caption lines of a video.
func (c *Client) Segments(ctx context.Context, videoID string) ([]Segment, error) {
	tracks, err := c.Tracks(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTranscript, err)
	}

	failed := ""
	if en, ok := findTrack(tracks, "en"); ok {
		segments, err := c.fetchTrack(ctx, en)
		if err == nil && len(segments) > 0 {
			return segments, nil
		}
		c.log.Warn("direct caption fetch failed, trying other tracks", "video_id", videoID, "error", err)
		failed = en.BaseURL
	}

	track, ok := preferredTrack(tracks, failed)
	if !ok {
		return nil, fmt.Errorf("%w: no usable caption track for video %s", ErrNoTranscript, videoID)
	}
	segments, err := c.fetchTrack(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTranscript, err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: empty caption track for video %s", ErrNoTranscript, videoID)
	}
	return segments, nil
}

// Tracks lists the caption tracks advertised on the video's watch page.
func (c *Client) Tracks(ctx context.Context, videoID string) ([]Track, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/watch?v=%s", c.baseURL, videoID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video page: %w", err)
	}

	split := strings.SplitN(body, `"captions":`, 2)
	if len(split) < 2 {
		return nil, fmt.Errorf("no captions available for video %s", videoID)
	}
	end := strings.Index(split[1], `,"videoDetails`)
	if end < 0 {
		return nil, fmt.Errorf("malformed captions data for video %s", videoID)
	}

	var captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []Track `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	if err := json.Unmarshal([]byte(split[1][:end]), &captions); err != nil {
		return nil, fmt.Errorf("failed to parse captions data: %w", err)
	}
	tracks := captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no transcripts available for video %s", videoID)
	}
	return tracks, nil
}

func (c *Client) fetchTrack(ctx context.Context, t Track) ([]Segment, error) {
	body, err := c.get(ctx, t.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}
	matches := xmlTranscript.FindAllStringSubmatch(body, -1)
	segments := make([]Segment, 0, len(matches))
	for _, m := range matches {
		start, _ := strconv.ParseFloat(m[1], 64)
		dur, _ := strconv.ParseFloat(m[2], 64)
		// Caption text arrives double-escaped (&amp;#39;).
		segments = append(segments, Segment{
			Text:     html.UnescapeString(html.UnescapeString(m[3])),
			Start:    start,
			Duration: dur,
		})
	}
	return segments, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func findTrack(tracks []Track, code string) (Track, bool) {
	for _, t := range tracks {
		if t.LanguageCode == code {
			return t, true
		}
	}
	return Track{}, false
}

// preferredTrack picks an English track, else the first, skipping the track
// whose URL already failed.
func preferredTrack(tracks []Track, skip string) (Track, bool) {
	for _, code := range englishCodes {
		if t, ok := findTrack(tracks, code); ok && t.BaseURL != skip {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.BaseURL != skip {
			return t, true
		}
	}
	return Track{}, false
}

// Clean collapses newlines and whitespace runs to single spaces and trims.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
}

// Package bookaway implements the outbound client for the Bookaway search API
// and the normalization of its responses into domain.TripRecord values.
package bookaway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/proxy"

	"github.com/farepoint/bookaway-scraper/internal/domain"
)

const (
	defaultBaseURL = "https://www.bookaway.com"
	searchPath     = "/api/v1/search"
)

// travelOptions is the fixed list of transport modes requested per search.
var travelOptions = []string{"bus", "train", "ferry", "minivan", "taxi"}

// browserHeaders impersonates a desktop browser. The search endpoint is the
// same one the public site calls, so requests carry the site's usual headers.
var browserHeaders = map[string]string{
	"Accept":       "application/json, text/plain, */*",
	"Content-Type": "application/json",
	"User-Agent":   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Origin":       "https://www.bookaway.com",
	"Referer":      "https://www.bookaway.com/",
}

// Client issues search calls against the Bookaway API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests to point the client
// at a local fake server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// NewClient builds a Client with the given request timeout. The transport
// honors proxy-related environment variables (ALL_PROXY et al.) via the
// x/net/proxy dialer.
func NewClient(logger *slog.Logger, timeout time.Duration, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = proxy.Dial

	c := &Client{
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
		baseURL:    defaultBaseURL,
		log:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchRequest is the POST body the search endpoint expects: one-way, one
// adult, all supported transport modes.
type searchRequest struct {
	From          place    `json:"from"`
	To            place    `json:"to"`
	Date          string   `json:"date"`
	Direction     string   `json:"direction"`
	People        people   `json:"people"`
	TravelOptions []string `json:"travelOptions"`
}

type place struct {
	Slug string `json:"slug"`
	Type string `json:"type"`
}

type people struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Seniors  int `json:"seniors"`
}

// searchResponse keeps each result entry as raw JSON so one malformed entry
// can be skipped without discarding its siblings.
type searchResponse struct {
	Results []json.RawMessage `json:"results"`
}

// Search fetches all trips for one route on one travel date (YYYY-MM-DD).
// A non-200 status or an undecodable body fails the whole unit; callers treat
// that as a recoverable per-unit failure, not a fatal one.
func (c *Client) Search(ctx context.Context, route domain.RouteSpec, date string) ([]json.RawMessage, error) {
	body, err := json.Marshal(searchRequest{
		From:          place{Slug: route.FromSlug, Type: "city"},
		To:            place{Slug: route.ToSlug, Type: "city"},
		Date:          date,
		Direction:     "one-way",
		People:        people{Adults: 1},
		TravelOptions: travelOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("bookaway.Client.Search: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("bookaway.Client.Search: build request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	c.log.Debug("search request", "from", route.FromSlug, "to", route.ToSlug, "date", date)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bookaway.Client.Search: %s -> %s on %s: %w", route.FromSlug, route.ToSlug, date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bookaway.Client.Search: %s -> %s on %s: status %d", route.FromSlug, route.ToSlug, date, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("bookaway.Client.Search: %s -> %s on %s: decode response: %w", route.FromSlug, route.ToSlug, date, err)
	}

	return sr.Results, nil
}

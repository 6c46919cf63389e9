// Package shikimori searches the Shikimori catalogue. Shikimori reuses
// MyAnimeList identifiers, so entry ids are returned as MAL ids directly.
package shikimori

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"medialookup/internal/media"
	"medialookup/internal/search"
	"medialookup/internal/services"
)

// Name is the backend name used in lookup queues.
const Name = "shikimori"

// Entry is one element of the /api/animes or /api/mangas search response.
type Entry struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Russian    string `json:"russian"`
	Kind       string `json:"kind"`
	AiredOn    string `json:"aired_on"`
	ReleasedOn string `json:"released_on"`
}

// Client queries the Shikimori REST API.
type Client struct {
	baseURL   string
	userAgent string
	fetcher   *search.Fetcher
}

var _ search.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithFetcher overrides the shared HTTP fetcher.
func WithFetcher(fetcher *search.Fetcher) Option {
	return func(c *Client) {
		if fetcher != nil {
			c.fetcher = fetcher
		}
	}
}

// WithUserAgent sets the User-Agent sent to Shikimori, which rejects
// anonymous clients.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if ua := strings.TrimSpace(userAgent); ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a Shikimori client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("shikimori base url required")
	}
	client := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "PlaShiki",
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.fetcher == nil {
		client.fetcher = search.NewFetcher()
	}
	return client, nil
}

func (c *Client) Name() string { return Name }

// SearchEntries returns raw catalogue entries matching query.
func (c *Client) SearchEntries(ctx context.Context, kind media.Type, query string) ([]Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(search.PageSize))
	endpoint := fmt.Sprintf("%s/api/%ss?%s", c.baseURL, kind, params.Encode())

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	var entries []Entry
	if err := c.fetcher.GetJSON(ctx, endpoint, header, &entries); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, Name, "search", "request failed", err)
	}
	return entries, nil
}

// Search implements search.Backend.
func (c *Client) Search(ctx context.Context, kind media.Type, query string) ([]search.Candidate, error) {
	entries, err := c.SearchEntries(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	out := make([]search.Candidate, 0, len(entries))
	for _, entry := range entries {
		out = append(out, candidate{entry: entry})
	}
	return out, nil
}

type candidate struct {
	entry Entry
}

func (c candidate) Names() []string {
	return search.AppendNonEmpty(nil, c.entry.Name, c.entry.Russian)
}

func (c candidate) PrimaryName() string { return c.entry.Name }

func (c candidate) Seasons() media.Seasons {
	var seasons media.Seasons
	seasons.Start, _ = media.ParseSeasonDate(c.entry.AiredOn)
	seasons.End, _ = media.ParseSeasonDate(c.entry.ReleasedOn)
	return seasons
}

func (c candidate) ID(context.Context) (media.ExternalID, bool, error) {
	id, ok := search.MALID(c.entry.ID)
	return id, ok, nil
}

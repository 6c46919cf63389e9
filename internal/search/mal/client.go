// Package mal searches the official MyAnimeList v2 API.
package mal

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
const Name = "mal"

// Node is the entry payload of one search result.
type Node struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	AlternativeTitles struct {
		Synonyms []string `json:"synonyms"`
		En       string   `json:"en"`
		Ja       string   `json:"ja"`
	} `json:"alternative_titles"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type searchResponse struct {
	Data []struct {
		Node Node `json:"node"`
	} `json:"data"`
}

// Client queries the MyAnimeList API with a client id.
type Client struct {
	baseURL  string
	clientID string
	fetcher  *search.Fetcher
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

// New creates a MyAnimeList client. An empty client id is accepted; searches
// then fail with a configuration error so the engine skips this backend.
func New(baseURL, clientID string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("mal base url required")
	}
	client := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: strings.TrimSpace(clientID),
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

// SearchNodes returns raw MyAnimeList entries matching query.
func (c *Client) SearchNodes(ctx context.Context, kind media.Type, query string) ([]Node, error) {
	if c.clientID == "" {
		return nil, services.Wrap(services.ErrConfiguration, Name, "search", "mal.client_id (or MAL_CLIENT_ID) is not set", nil)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", "alternative_titles,start_date,end_date")
	params.Set("limit", strconv.Itoa(search.PageSize))
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, kind, params.Encode())

	header := http.Header{}
	header.Set("X-MAL-Client-ID", c.clientID)
	var resp searchResponse
	if err := c.fetcher.GetJSON(ctx, endpoint, header, &resp); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, Name, "search", "request failed", err)
	}
	nodes := make([]Node, 0, len(resp.Data))
	for _, item := range resp.Data {
		nodes = append(nodes, item.Node)
	}
	return nodes, nil
}

// Search implements search.Backend.
func (c *Client) Search(ctx context.Context, kind media.Type, query string) ([]search.Candidate, error) {
	nodes, err := c.SearchNodes(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	out := make([]search.Candidate, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, candidate{node: node})
	}
	return out, nil
}

type candidate struct {
	node Node
}

func (c candidate) Names() []string {
	alt := c.node.AlternativeTitles
	names := search.AppendNonEmpty(nil, c.node.Title, alt.En, alt.Ja)
	return search.AppendNonEmpty(names, alt.Synonyms...)
}

func (c candidate) PrimaryName() string { return c.node.Title }

func (c candidate) Seasons() media.Seasons {
	var seasons media.Seasons
	seasons.Start, _ = media.ParseSeasonDate(c.node.StartDate)
	seasons.End, _ = media.ParseSeasonDate(c.node.EndDate)
	return seasons
}

func (c candidate) ID(context.Context) (media.ExternalID, bool, error) {
	id, ok := search.MALID(c.node.ID)
	return id, ok, nil
}

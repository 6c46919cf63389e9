// Package anilist searches AniList through its GraphQL API and maps entries
// to their MyAnimeList ids.
package anilist

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"medialookup/internal/media"
	"medialookup/internal/search"
	"medialookup/internal/services"
)

// Name is the backend name used in lookup queues.
const Name = "anilist"

const searchQuery = `query ($name: String, $type: MediaType, $perPage: Int) {
  Page(perPage: $perPage) {
    media(search: $name, type: $type) {
      idMal
      synonyms
      title { romaji english native }
      startDate { year month }
      endDate { year month }
    }
  }
}`

// FuzzyDate is AniList's partial date.
type FuzzyDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Season returns the airing season when both year and month are known.
func (d FuzzyDate) Season() *media.Season {
	if d.Year <= 0 || d.Month <= 0 {
		return nil
	}
	return media.SeasonFromParts(d.Year, d.Month)
}

// Media is one element of Page.media.
type Media struct {
	IDMal    *int64   `json:"idMal"`
	Synonyms []string `json:"synonyms"`
	Title    struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	StartDate FuzzyDate `json:"startDate"`
	EndDate   FuzzyDate `json:"endDate"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Page struct {
			Media []Media `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client queries the AniList GraphQL endpoint.
type Client struct {
	endpoint string
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

// New creates an AniList client for the GraphQL endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("anilist endpoint required")
	}
	client := &Client{endpoint: endpoint}
	for _, opt := range opts {
		opt(client)
	}
	if client.fetcher == nil {
		client.fetcher = search.NewFetcher()
	}
	return client, nil
}

func (c *Client) Name() string { return Name }

// SearchMedia returns raw AniList media matching query.
func (c *Client) SearchMedia(ctx context.Context, kind media.Type, query string) ([]Media, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	mediaType := "ANIME"
	if kind == media.TypeManga {
		mediaType = "MANGA"
	}
	body := graphQLRequest{
		Query: searchQuery,
		Variables: map[string]any{
			"name":    query,
			"type":    mediaType,
			"perPage": search.PageSize,
		},
	}
	var resp graphQLResponse
	if err := c.fetcher.PostJSON(ctx, c.endpoint, http.Header{}, body, &resp); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, Name, "search", "request failed", err)
	}
	if len(resp.Errors) > 0 && len(resp.Data.Page.Media) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, Name, "search", resp.Errors[0].Message, nil)
	}
	return resp.Data.Page.Media, nil
}

// Search implements search.Backend.
func (c *Client) Search(ctx context.Context, kind media.Type, query string) ([]search.Candidate, error) {
	items, err := c.SearchMedia(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	out := make([]search.Candidate, 0, len(items))
	for _, item := range items {
		out = append(out, candidate{item: item})
	}
	return out, nil
}

type candidate struct {
	item Media
}

func (c candidate) Names() []string {
	names := search.AppendNonEmpty(nil, c.item.Title.Romaji, c.item.Title.English, c.item.Title.Native)
	return search.AppendNonEmpty(names, c.item.Synonyms...)
}

func (c candidate) PrimaryName() string { return c.item.Title.Romaji }

func (c candidate) Seasons() media.Seasons {
	return media.Seasons{Start: c.item.StartDate.Season(), End: c.item.EndDate.Season()}
}

func (c candidate) ID(context.Context) (media.ExternalID, bool, error) {
	if c.item.IDMal == nil {
		return media.ExternalID{}, false, nil
	}
	id, ok := search.MALID(*c.item.IDMal)
	return id, ok, nil
}

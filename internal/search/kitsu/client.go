// Package kitsu searches the Kitsu JSON:API. MyAnimeList ids are resolved
// from the "mappings" resources included in the search response.
package kitsu

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"medialookup/internal/media"
	"medialookup/internal/search"
	"medialookup/internal/services"
)

// Name is the backend name used in lookup queues.
const Name = "kitsu"

// Resource is a JSON:API resource object of the search response.
type Resource struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Attributes    Attributes    `json:"attributes"`
	Relationships Relationships `json:"relationships"`
}

// Relationships lists the mapping resources linked to an entry.
type Relationships struct {
	Mappings struct {
		Data []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"data"`
	} `json:"mappings"`
}

// Attributes holds the fields of anime, manga and mapping resources.
type Attributes struct {
	Titles            map[string]*string `json:"titles"`
	CanonicalTitle    string             `json:"canonicalTitle"`
	AbbreviatedTitles []string           `json:"abbreviatedTitles"`
	StartDate         string             `json:"startDate"`
	EndDate           string             `json:"endDate"`
	ExternalSite      string             `json:"externalSite"`
	ExternalID        string             `json:"externalId"`
}

// Document is the top-level search response.
type Document struct {
	Data     []Resource `json:"data"`
	Included []Resource `json:"included"`
}

// Client queries the Kitsu API.
type Client struct {
	baseURL string
	fetcher *search.Fetcher
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

// New creates a Kitsu client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("kitsu base url required")
	}
	client := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(client)
	}
	if client.fetcher == nil {
		client.fetcher = search.NewFetcher()
	}
	return client, nil
}

func (c *Client) Name() string { return Name }

// SearchDocument returns the raw JSON:API document for query.
func (c *Client) SearchDocument(ctx context.Context, kind media.Type, query string) (*Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("filter[text]", query)
	params.Set("page[limit]", strconv.Itoa(search.PageSize))
	params.Set("fields["+string(kind)+"]", "titles,canonicalTitle,abbreviatedTitles,mappings,startDate,endDate")
	params.Set("include", "mappings")
	params.Set("fields[mappings]", "externalSite,externalId")
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, kind, params.Encode())

	var doc Document
	if err := c.fetcher.GetJSON(ctx, endpoint, nil, &doc); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, Name, "search", "request failed", err)
	}
	return &doc, nil
}

// Search implements search.Backend.
func (c *Client) Search(ctx context.Context, kind media.Type, query string) ([]search.Candidate, error) {
	doc, err := c.SearchDocument(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	index := newMappingIndex(doc.Included)
	out := make([]search.Candidate, 0, len(doc.Data))
	for _, resource := range doc.Data {
		out = append(out, candidate{resource: resource, mappings: index})
	}
	return out, nil
}

// mappingIndex resolves mapping resource ids to MyAnimeList ids.
type mappingIndex map[string]int64

func newMappingIndex(included []Resource) mappingIndex {
	index := make(mappingIndex)
	for _, res := range included {
		if !strings.HasPrefix(res.Attributes.ExternalSite, "myanimelist/") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(res.Attributes.ExternalID), 10, 64)
		if err != nil {
			continue
		}
		index[res.ID] = id
	}
	return index
}

type candidate struct {
	resource Resource
	mappings mappingIndex
}

func (c candidate) Names() []string {
	attrs := c.resource.Attributes
	names := make([]string, 0, len(attrs.Titles)+1+len(attrs.AbbreviatedTitles))
	for _, key := range sortedKeys(attrs.Titles) {
		if title := attrs.Titles[key]; title != nil {
			names = search.AppendNonEmpty(names, *title)
		}
	}
	names = search.AppendNonEmpty(names, attrs.CanonicalTitle)
	return search.AppendNonEmpty(names, attrs.AbbreviatedTitles...)
}

func (c candidate) PrimaryName() string { return c.resource.Attributes.CanonicalTitle }

func (c candidate) Seasons() media.Seasons {
	var seasons media.Seasons
	seasons.Start, _ = media.ParseSeasonDate(c.resource.Attributes.StartDate)
	seasons.End, _ = media.ParseSeasonDate(c.resource.Attributes.EndDate)
	return seasons
}

func (c candidate) ID(context.Context) (media.ExternalID, bool, error) {
	for _, ref := range c.resource.Relationships.Mappings.Data {
		if malID, ok := c.mappings[ref.ID]; ok {
			id, ok := search.MALID(malID)
			return id, ok, nil
		}
	}
	return media.ExternalID{}, false, nil
}

func sortedKeys(m map[string]*string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

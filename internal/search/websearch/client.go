// Package websearch is the conflict fallback backend: it asks a general web
// search engine for Shikimori pages about the title and treats each result
// whose link embeds a Shikimori id as a candidate. Shikimori ids are
// MyAnimeList ids.
//
// With a SerpAPI key the Google engine is queried through SerpAPI's JSON API;
// without one the DuckDuckGo HTML endpoint is scraped.
package websearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"medialookup/internal/media"
	"medialookup/internal/search"
	"medialookup/internal/services"
)

// Name is the backend name used in lookup queues.
const Name = "websearch"

var (
	titleLinkPattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?shikimori\.(?:one|me|org)/(?:animes|mangas|ranobe)/[a-z]*(\d+)(?:[a-z0-9-]+)?/?$`)
	titleSplit       = regexp.MustCompile(` / | \.\.\.| \| `)
)

// Result is a single organic search hit.
type Result struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type serpResponse struct {
	OrganicResults []Result `json:"organic_results"`
	Error          string   `json:"error"`
}

// Config holds the endpoints of the web search backend.
type Config struct {
	SerpAPIKey string
	SerpAPIURL string
	HTMLURL    string
	Site       string
}

// Client runs site-restricted web searches.
type Client struct {
	cfg     Config
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

// New creates a web search client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SerpAPIKey = strings.TrimSpace(cfg.SerpAPIKey)
	cfg.SerpAPIURL = strings.TrimSpace(cfg.SerpAPIURL)
	cfg.HTMLURL = strings.TrimSpace(cfg.HTMLURL)
	cfg.Site = strings.TrimSpace(cfg.Site)
	if cfg.Site == "" {
		cfg.Site = "shikimori.one"
	}
	if cfg.SerpAPIKey != "" && cfg.SerpAPIURL == "" {
		return nil, errors.New("serpapi url required when a serpapi key is set")
	}
	if cfg.SerpAPIKey == "" && cfg.HTMLURL == "" {
		return nil, errors.New("websearch html url required without a serpapi key")
	}
	client := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(client)
	}
	if client.fetcher == nil {
		client.fetcher = search.NewFetcher()
	}
	return client, nil
}

func (c *Client) Name() string { return Name }

// Query builds the search engine query for a title.
func (c *Client) Query(kind media.Type, name string) string {
	return fmt.Sprintf("%s %s site:%s", kind, strings.TrimSpace(name), c.cfg.Site)
}

// SearchResults returns the raw organic results for a title.
func (c *Client) SearchResults(ctx context.Context, kind media.Type, name string) ([]Result, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("query must not be empty")
	}
	if c.cfg.SerpAPIKey != "" {
		return c.searchSerpAPI(ctx, c.Query(kind, name))
	}
	return c.searchHTML(ctx, c.Query(kind, name))
}

func (c *Client) searchSerpAPI(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", c.cfg.SerpAPIKey)
	var resp serpResponse
	if err := c.fetcher.GetJSON(ctx, c.cfg.SerpAPIURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, Name, "serpapi", "request failed", err)
	}
	if resp.Error != "" && len(resp.OrganicResults) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, Name, "serpapi", resp.Error, nil)
	}
	return resp.OrganicResults, nil
}

func (c *Client) searchHTML(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	endpoint := c.cfg.HTMLURL
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + params.Encode()
	} else {
		endpoint += "?" + params.Encode()
	}
	header := http.Header{}
	header.Set("Accept", "text/html")
	body, err := c.fetcher.Do(ctx, search.Request{Method: http.MethodGet, URL: endpoint, Header: header})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, Name, "html search", "request failed", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, Name, "html search", "parse results page", err)
	}
	var results []Result
	doc.Find("a.result__a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		link := unwrapRedirect(href)
		title := strings.Join(strings.Fields(sel.Text()), " ")
		if link == "" || title == "" {
			return
		}
		results = append(results, Result{Title: title, Link: link})
	})
	return results, nil
}

// unwrapRedirect extracts the target of a DuckDuckGo "/l/?uddg=" redirect.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// Search implements search.Backend. Results that are not Shikimori title
// pages are dropped.
func (c *Client) Search(ctx context.Context, kind media.Type, query string) ([]search.Candidate, error) {
	results, err := c.SearchResults(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	out := make([]search.Candidate, 0, len(results))
	for _, result := range results {
		match := titleLinkPattern.FindStringSubmatch(strings.TrimSpace(result.Link))
		if match == nil {
			continue
		}
		id, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, candidate{title: primaryTitle(result.Title), malID: id})
	}
	return out, nil
}

// primaryTitle keeps the part of a result title before the first " / "
// separator or ellipsis.
func primaryTitle(title string) string {
	return strings.TrimSpace(titleSplit.Split(title, 2)[0])
}

type candidate struct {
	title string
	malID int64
}

func (c candidate) Names() []string { return search.AppendNonEmpty(nil, c.title) }

func (c candidate) PrimaryName() string { return c.title }

func (c candidate) Seasons() media.Seasons { return media.Seasons{} }

func (c candidate) ID(context.Context) (media.ExternalID, bool, error) {
	id, ok := search.MALID(c.malID)
	return id, ok, nil
}

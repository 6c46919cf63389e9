package websearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"medialookup/internal/media"
	"medialookup/internal/search/websearch"
)

func TestSearchSerpAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "google" || q.Get("api_key") != "token" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		if q.Get("q") != "anime Стальной алхимик site:shikimori.one" {
			t.Errorf("unexpected search query %q", q.Get("q"))
		}
		_, _ = w.Write([]byte(`{"organic_results":[
			{"title":"Стальной алхимик: Братство / Fullmetal Alchemist: Brotherhood","link":"https://shikimori.one/animes/z5114-fullmetal-alchemist-brotherhood"},
			{"title":"Стальной алхимик ...","link":"https://shikimori.one/animes/121-fullmetal-alchemist/"},
			{"title":"Forum thread","link":"https://shikimori.one/forum/animanga/1"}
		]}`))
	}))
	t.Cleanup(server.Close)

	client, err := websearch.New(websearch.Config{SerpAPIKey: "token", SerpAPIURL: server.URL})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	candidates, err := client.Search(context.Background(), media.TypeAnime, "Стальной алхимик")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected forum link to be dropped, got %d candidates", len(candidates))
	}
	if candidates[0].PrimaryName() != "Стальной алхимик: Братство" {
		t.Fatalf("unexpected primary name %q", candidates[0].PrimaryName())
	}
	if candidates[1].PrimaryName() != "Стальной алхимик" {
		t.Fatalf("unexpected primary name %q", candidates[1].PrimaryName())
	}
	id, ok, _ := candidates[0].ID(context.Background())
	if !ok || id != (media.ExternalID{Service: media.ServiceMAL, ID: "5114"}) {
		t.Fatalf("unexpected id %+v", id)
	}
	if s := candidates[0].Seasons(); s.Start != nil || s.End != nil {
		t.Fatalf("expected no seasons, got %+v", s)
	}
}

func TestSearchHTMLFallback(t *testing.T) {
	page := `<html><body>
	<div class="result"><h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fshikimori.one%2Fmangas%2F2-berserk&amp;rut=abc">Берсерк / Berserk</a></h2></div>
	<div class="result"><h2><a class="result__a" href="https://shikimori.one/mangas/y9115-ookami-to-koushinryou">Волчица и пряности</a></h2></div>
	<div class="result"><h2><a class="result__a" href="https://example.com/berserk">Elsewhere</a></h2></div>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "manga berserk site:shikimori.one" {
			t.Errorf("unexpected search query %q", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)

	client, err := websearch.New(websearch.Config{HTMLURL: server.URL + "/html/"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	candidates, err := client.Search(context.Background(), media.TypeManga, "berserk")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 shikimori candidates, got %d", len(candidates))
	}
	if names := candidates[0].Names(); len(names) != 1 || names[0] != "Берсерк" {
		t.Fatalf("unexpected names %q", names)
	}
	if id, _, _ := candidates[0].ID(context.Background()); id.ID != "2" {
		t.Fatalf("expected redirect target id 2, got %+v", id)
	}
	if id, _, _ := candidates[1].ID(context.Background()); id.ID != "9115" {
		t.Fatalf("unexpected id %+v", id)
	}
}

func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := websearch.New(websearch.Config{}); err == nil {
		t.Fatal("expected error without any endpoint")
	}
	if _, err := websearch.New(websearch.Config{SerpAPIKey: "k"}); err == nil {
		t.Fatal("expected error without serpapi url")
	}
}

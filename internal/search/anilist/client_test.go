package anilist_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"medialookup/internal/media"
	"medialookup/internal/search/anilist"
	"medialookup/internal/services"
)

func TestSearchSendsGraphQLQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Variables["name"] != "Steins;Gate" || body.Variables["type"] != "MANGA" {
			t.Errorf("unexpected variables %v", body.Variables)
		}
		_, _ = w.Write([]byte(`{"data":{"Page":{"media":[
			{"idMal":9253,"synonyms":["SG"],"title":{"romaji":"Steins;Gate","english":"Steins;Gate","native":"シュタインズ・ゲート"},
			 "startDate":{"year":2011,"month":4},"endDate":{"year":2011,"month":null}},
			{"idMal":null,"synonyms":[],"title":{"romaji":"Steins;Gate 0","english":null,"native":null},
			 "startDate":{"year":null,"month":null},"endDate":{"year":null,"month":null}}
		]}}}`))
	}))
	t.Cleanup(server.Close)

	client, err := anilist.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	candidates, err := client.Search(context.Background(), media.TypeManga, "Steins;Gate")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	first := candidates[0]
	if names := first.Names(); len(names) != 4 || names[3] != "SG" {
		t.Fatalf("unexpected names %q", names)
	}
	if s := first.Seasons(); s.Start == nil || *s.Start != (media.Season{Year: 2011, Name: media.Spring}) || s.End != nil {
		t.Fatalf("unexpected seasons %+v", s)
	}
	if id, ok, _ := first.ID(context.Background()); !ok || id.ID != "9253" {
		t.Fatalf("unexpected id %+v", id)
	}
	if _, ok, _ := candidates[1].ID(context.Background()); ok {
		t.Fatal("expected null idMal to be unresolved")
	}
	if candidates[1].PrimaryName() != "Steins;Gate 0" {
		t.Fatalf("unexpected primary name %q", candidates[1].PrimaryName())
	}
}

func TestSearchReportsGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"Page":{"media":[]}},"errors":[{"message":"invalid search"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := anilist.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.Search(context.Background(), media.TypeAnime, "x")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

package lookup

import (
	"testing"
	"time"

	"medialookup/internal/kv"
	"medialookup/internal/media"
)

func TestCacheKey(t *testing.T) {
	spring19 := &media.Season{Year: 2019, Name: media.Spring}
	fall19 := &media.Season{Year: 2019, Name: media.Fall}
	any20 := &media.Season{Year: 2020, Name: media.AnySeason}

	tests := []struct {
		name string
		req  media.Request
		want string
	}{
		{"plain", media.Request{}, "~lookup:naruto"},
		{"start", media.Request{StartSeason: spring19}, "~lookup:spring2019>:naruto"},
		{"start and end", media.Request{StartSeason: spring19, EndSeason: fall19}, "~lookup:spring2019>:<fall2019:naruto"},
		{"some", media.Request{SomeSeason: any20}, "~lookup:<any2020>:naruto"},
		{"some ignored with start", media.Request{StartSeason: spring19, SomeSeason: any20}, "~lookup:spring2019>:naruto"},
		{"manga", media.Request{MediaType: media.TypeManga}, "~lookup:manga:naruto"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CacheKey("naruto", tc.req); got != tc.want {
				t.Fatalf("CacheKey = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResultCacheTTL(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	cache := NewResultCache(kv.NewMemory(), clock.Now)
	ctx := t.Context()
	identity := &media.Identity{ID: media.ExternalID{Service: media.ServiceMAL, ID: "1"}, Type: media.TypeAnime}

	if err := cache.Put(ctx, "pos", identity); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Put(ctx, "neg", nil); err != nil {
		t.Fatalf("Put negative: %v", err)
	}

	clock.Advance(6 * 24 * time.Hour)
	if got, hit, _ := cache.Get(ctx, "pos"); !hit || got == nil || got.ID.ID != "1" {
		t.Fatalf("expected positive hit at T+6d, got %+v hit=%v", got, hit)
	}
	if _, hit, _ := cache.Get(ctx, "neg"); hit {
		t.Fatal("expected negative entry expired at T+6d")
	}

	clock.now = start.Add(PositiveTTL)
	if _, hit, _ := cache.Get(ctx, "pos"); !hit {
		t.Fatal("expected positive hit exactly at expiry")
	}
	clock.now = start.Add(PositiveTTL + time.Millisecond)
	if _, hit, _ := cache.Get(ctx, "pos"); hit {
		t.Fatal("expected positive miss after T+7d")
	}

	clock.now = start.Add(NegativeTTL)
	if got, hit, _ := cache.Get(ctx, "neg"); !hit || got != nil {
		t.Fatalf("expected negative hit at T+1d, got %+v hit=%v", got, hit)
	}
	clock.now = start.Add(NegativeTTL + time.Millisecond)
	if _, hit, _ := cache.Get(ctx, "neg"); hit {
		t.Fatal("expected negative miss after T+1d")
	}
}

func TestResultCacheEnvelopeFormat(t *testing.T) {
	store := kv.NewMemory()
	clock := &fakeClock{now: time.UnixMilli(1_000)}
	cache := NewResultCache(store, clock.Now)
	if err := cache.Put(t.Context(), "~lookup:x", nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	raw, _, _ := store.Get(t.Context(), "~lookup:x")
	if string(raw) != `{"r":86401000,"v":null}` {
		t.Fatalf("unexpected envelope %s", raw)
	}
}

func TestResultCacheDecodeError(t *testing.T) {
	store := kv.NewMemory()
	_ = store.Set(t.Context(), "~lookup:bad", []byte("garbage"))
	cache := NewResultCache(store, nil)
	if _, hit, err := cache.Get(t.Context(), "~lookup:bad"); err == nil || hit {
		t.Fatalf("expected decode error, got hit=%v err=%v", hit, err)
	}
}

func TestResultCacheEntriesAndClear(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	store := kv.NewMemory()
	cache := NewResultCache(store, clock.Now)
	ctx := t.Context()
	identity := &media.Identity{ID: media.ExternalID{Service: media.ServiceMAL, ID: "5"}, Type: media.TypeAnime}

	_ = cache.Put(ctx, "~lookup:a", identity)
	_ = cache.Put(ctx, "~lookup:b", nil)
	_ = store.Set(ctx, "unrelated", []byte(`{}`))

	entries, err := cache.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "~lookup:a" || entries[0].Value == nil || entries[1].Value != nil {
		t.Fatalf("unexpected entries %+v", entries)
	}

	clock.Advance(2 * 24 * time.Hour)
	removed, err := cache.Clear(ctx, true)
	if err != nil || removed != 1 {
		t.Fatalf("expected one expired entry removed, got %d err=%v", removed, err)
	}
	removed, err = cache.Clear(ctx, false)
	if err != nil || removed != 1 {
		t.Fatalf("expected remaining entry removed, got %d err=%v", removed, err)
	}
	if _, ok, _ := store.Get(ctx, "unrelated"); !ok {
		t.Fatal("expected non-lookup keys untouched")
	}
}

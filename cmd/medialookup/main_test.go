package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"medialookup/internal/api"
)

type cliTestEnv struct {
	configPath string
	cachePath  string
	baseDir    string
	requests   *atomic.Int32
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))
	t.Setenv("FUZZY_THRESHOLD", "")
	t.Setenv("MAL_CLIENT_ID", "")
	t.Setenv("SERPAPI_TOKEN", "")

	requests := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/api/animes" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(strings.ToLower(r.URL.Query().Get("search")), "kimetsu") {
			_, _ = w.Write([]byte(`[{"id":38000,"name":"Kimetsu no Yaiba","russian":"Клинок, рассекающий демонов","kind":"tv","aired_on":"2019-04-06","released_on":"2019-09-28"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	cachePath := filepath.Join(base, "lookup.json")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[lookup]
fuzzy_threshold = 70
queue = ["shikimori"]
conflict_queue = []

[cache]
backend = "json"
path = %q

[shikimori]
base_url = %q

[logging]
format = "json"
level = "error"
`, cachePath, srv.URL)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		configPath: configPath,
		cachePath:  cachePath,
		baseDir:    base,
		requests:   requests,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("expected output to contain %q, got %q", want, out)
	}
}

func TestLookupCommandResolvesAndCaches(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"lookup", "Kimetsu no Yaiba"}, env.configPath)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	requireContains(t, out, "mal:38000 (anime)")
	if got := env.requests.Load(); got != 1 {
		t.Fatalf("expected 1 backend request, got %d", got)
	}

	out, _, err = runCLI(t, []string{"--json", "lookup", "Kimetsu no Yaiba"}, env.configPath)
	if err != nil {
		t.Fatalf("lookup --json: %v", err)
	}
	var result api.LookupResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode lookup json: %v (%q)", err, out)
	}
	if !result.Found || result.Key != "mal:38000" {
		t.Fatalf("unexpected lookup result: %+v", result)
	}
	if got := env.requests.Load(); got != 1 {
		t.Fatalf("second lookup should be served from cache, got %d requests", got)
	}
}

func TestLookupCommandNoMatch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"lookup", "Something Else Entirely"}, env.configPath)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	requireContains(t, out, "No match")
}

func TestLookupCommandRejectsBadSeason(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"lookup", "--start-season", "autumnal", "Kimetsu no Yaiba"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--start-season") {
		t.Fatalf("expected start-season error, got %v", err)
	}
}

func TestLookupCommandBatch(t *testing.T) {
	env := setupCLITestEnv(t)

	batchPath := filepath.Join(env.baseDir, "requests.jsonl")
	batch := `{"names":["Kimetsu no Yaiba"]}

{"names":["Unknown Title"],"media_type":"anime"}
`
	if err := os.WriteFile(batchPath, []byte(batch), 0o644); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	out, _, err := runCLI(t, []string{"--json", "lookup", "--batch", batchPath, "--concurrency", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("lookup --batch: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 result lines, got %d: %q", len(lines), out)
	}
	var first, second api.LookupResult
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if first.Index != 0 || first.Key != "mal:38000" {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if second.Index != 1 || second.Found {
		t.Fatalf("unexpected second result: %+v", second)
	}
}

func TestLookupCommandRequiresNames(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"lookup"}, env.configPath); err == nil {
		t.Fatal("expected error without names")
	}
}

func TestNormalizeCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"--json", "normalize", "Boku no Hero Academia 2nd Season"}, "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var results []normalizedName
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode normalize json: %v (%q)", err, out)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Normalized != "boku no hero academia 2" {
		t.Fatalf("unexpected normalized value %q", results[0].Normalized)
	}
}

func TestResolveURLCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"resolve-url", "https://myanimelist.net/manga/2/Berserk", "https://example.com/"}, "")
	if err != nil {
		t.Fatalf("resolve-url: %v", err)
	}
	requireContains(t, out, "mal:2")
	requireContains(t, out, "manga")
	requireContains(t, out, "https://example.com/")
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Result cache: empty")

	for _, name := range []string{"Kimetsu no Yaiba", "Unknown Title"} {
		if _, _, err := runCLI(t, []string{"lookup", name}, env.configPath); err != nil {
			t.Fatalf("lookup %q: %v", name, err)
		}
	}

	out, _, err = runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Result cache: 2 entries")
	requireContains(t, out, "~lookup:kimetsu no yaiba")
	requireContains(t, out, "no match")

	out, _, err = runCLI(t, []string{"cache", "remove", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("cache remove: %v", err)
	}
	requireContains(t, out, "Removed result cache entry 1")

	if _, _, err := runCLI(t, []string{"cache", "remove", "5"}, env.configPath); err == nil {
		t.Fatal("expected out of range error")
	}

	out, _, err = runCLI(t, []string{"cache", "clear", "--expired"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear --expired: %v", err)
	}
	requireContains(t, out, "nothing to remove")

	out, _, err = runCLI(t, []string{"--json", "cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	var cleared map[string]int
	if err := json.Unmarshal([]byte(out), &cleared); err != nil {
		t.Fatalf("decode clear json: %v", err)
	}
	if cleared["removed"] != 1 {
		t.Fatalf("expected 1 removed entry, got %v", cleared)
	}
}

func TestBackendsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "backends"}, env.configPath)
	if err != nil {
		t.Fatalf("backends: %v", err)
	}
	var infos []backendInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("decode backends: %v", err)
	}
	if len(infos) != 5 {
		t.Fatalf("expected 5 backends, got %d", len(infos))
	}
	for _, info := range infos {
		switch info.Name {
		case "shikimori":
			if info.QueuePosition != 1 {
				t.Fatalf("shikimori queue position = %d", info.QueuePosition)
			}
		case "mal":
			if info.Configured {
				t.Fatal("mal should not be configured without a client id")
			}
		}
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("MAL_CLIENT_ID", "secret-client")

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "secret-client") {
		t.Fatalf("client id leaked: %q", out)
	}
	requireContains(t, out, "redacted")
	requireContains(t, out, "fuzzy_threshold = 70")
}

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"animecat/internal/catalog"
	"animecat/internal/config"
	"animecat/internal/identity"
	"animecat/internal/shikimori"
	"animecat/internal/testsupport"
)

func TestResolveSingleItemThenMapping(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendFile, map[string][]shikimori.Candidate{
		"Sousou no Frieren": {
			{ID: 52991, Kind: "tv", AiredOn: "2023-09-29"},
			{ID: 56885, Kind: "ona", AiredOn: "2023-10-01"},
		},
	})

	args := []string{"resolve", "--id", "frieren", "--name", "Sousou no Frieren", "--type", "ona"}
	out, _, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "frieren -> 56885 (search: kind_match)")
	requireContains(t, out, "/animes/56885")

	out, _, err = runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	requireContains(t, out, "frieren -> 56885 (mapping)")
	if got := len(env.server.Queries()); got != 1 {
		t.Fatalf("expected one search across runs, got %d", got)
	}

	out, _, err = runCLI(t, []string{"mapping", "get", "frieren"}, env.configPath)
	if err != nil {
		t.Fatalf("mapping get: %v", err)
	}
	requireContains(t, out, "frieren -> 56885")
}

func TestResolveNotFound(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendMemory, nil)
	out, _, err := runCLI(t, []string{"resolve", "--id", "x", "--name", "Nothing", "--english", "Still Nothing"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "No Shikimori match for x")
	if got := env.server.Queries(); len(got) != 2 || got[1] != "Still Nothing" {
		t.Fatalf("expected primary and fallback queries, got %v", got)
	}
}

func TestResolveWritesRotatingLogFile(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendMemory, nil, testsupport.WithLogDir())
	env.cfg.Logging.Level = "info"
	writeTestConfig(t, env.configPath, env.cfg)

	if _, _, err := runCLI(t, []string{"resolve", "--id", "x", "--name", "Nothing"}, env.configPath); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	data, err := os.ReadFile(env.cfg.LogFilePath())
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	logText := string(data)
	requireContains(t, logText, `"msg":"no shikimori candidates found"`)
	requireContains(t, logText, `"item_id":"x"`)
	requireContains(t, logText, `"correlation_id":`)
}

func TestResolveRequiresIDAndName(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendMemory, nil)
	if _, _, err := runCLI(t, []string{"resolve", "--name", "Monster"}, env.configPath); err == nil {
		t.Fatal("expected error without --id")
	}
}

func TestResolveItemsFile(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendBadger, map[string][]shikimori.Candidate{
		"Monster":  {{ID: 19}},
		"Mushishi": {{ID: 457}},
	})
	itemsPath := filepath.Join(env.baseDir, "items.json")
	testsupport.WriteJSON(t, itemsPath, []catalog.Item{
		{ID: "1", Name: catalog.Name{Main: "Monster"}},
		{ID: "2", Name: catalog.Name{Main: "Mushishi"}},
		{ID: "3", Name: catalog.Name{Main: "Unknown Title"}},
	})

	out, _, err := runCLI(t, []string{"--json", "resolve", "--items", itemsPath}, env.configPath)
	if err != nil {
		t.Fatalf("resolve items: %v", err)
	}
	var results []identity.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode results %q: %v", out, err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ExternalID != 19 || results[1].ExternalID != 457 || results[2].Found {
		t.Fatalf("unexpected results: %+v", results)
	}

	out, _, err = runCLI(t, []string{"resolve", "--items", itemsPath}, env.configPath)
	if err != nil {
		t.Fatalf("resolve items table: %v", err)
	}
	requireContains(t, out, "Resolved 2 of 3 items")
}

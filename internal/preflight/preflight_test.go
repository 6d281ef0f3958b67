package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"animecat/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckStore(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite, config.BackendBadger, config.BackendMemory} {
		cfg := config.Default()
		cfg.Paths.DataDir = t.TempDir()
		cfg.Store.Backend = backend
		if result := CheckStore(context.Background(), &cfg); !result.Passed {
			t.Fatalf("%s: expected pass, got: %s", backend, result.Detail)
		}
	}
}

func TestCheckStore_BadBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "redis"
	if result := CheckStore(context.Background(), &cfg); result.Passed {
		t.Fatal("expected failure for unknown backend")
	}
}

func TestCheckShikimori_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "animecat-test" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	result := CheckShikimori(context.Background(), srv.URL, "animecat-test")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckShikimori_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	result := CheckShikimori(context.Background(), srv.URL, "anything")
	if result.Passed {
		t.Fatal("expected failure on 403")
	}
}

func TestCheckShikimori_MissingUserAgent(t *testing.T) {
	if result := CheckShikimori(context.Background(), "https://shikimori.one", " "); result.Passed {
		t.Fatal("expected failure without user agent")
	}
}

func TestRunAllSkipsNetworkByDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = ""
	cfg.Store.Backend = config.BackendMemory
	cfg.Shikimori.BaseURL = "http://127.0.0.1:1"

	results := RunAll(context.Background(), &cfg, false)
	if len(results) != 2 {
		t.Fatalf("expected data dir and store checks, got %+v", results)
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass, got %+v", results)
	}
}

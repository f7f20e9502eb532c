package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bozzhik/meta-scraper/internal/config"
	"github.com/bozzhik/meta-scraper/internal/report"
	"github.com/bozzhik/meta-scraper/internal/targets"
)

const examplePage = `<!doctype html>
<html>
<head>
    <title>Example Domain</title>
    <meta charset="utf-8" />
</head>
<body><h1>Example Domain</h1></body>
</html>`

func testConfig(t *testing.T, urls ...string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	quoted := make([]string, len(urls))
	for i, u := range urls {
		quoted[i] = fmt.Sprintf("%q", u)
	}
	targetsFile := filepath.Join(dir, "websites.json")
	body := fmt.Sprintf(`{"urls": [%s]}`, strings.Join(quoted, ", "))
	if err := os.WriteFile(targetsFile, []byte(body), 0o644); err != nil {
		t.Fatalf("write targets: %v", err)
	}
	return &config.Config{
		TargetsFile:     targetsFile,
		OutputDir:       filepath.Join(dir, "output"),
		PartisansSubdir: "partisans",
		UserAgent:       "meta-scraper-test",
		MaxBodyBytes:    1 << 20,
		RequestTimeout:  2 * time.Second,
	}
}

func pageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

func reportFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out
}

func TestEndToEndExampleDomain(t *testing.T) {
	srv := pageServer(t, examplePage)
	cfg := testConfig(t, srv.URL)

	a, err := NewAuditor(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAuditor: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	files := reportFiles(t, cfg.OutputDir)
	if len(files) != 1 {
		t.Fatalf("expected 1 report, got %v", files)
	}
	if want := report.FileName(time.Now(), srv.URL); files[0] != want {
		t.Fatalf("report named %q, want %q", files[0], want)
	}
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, files[0]))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"# Metadata for " + srv.URL,
		"**Title:** Example Domain",
		"**Description:** — — —",
		"**Keywords:** — — —",
		"**Author:** — — —",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q:\n%s", want, content)
		}
	}
}

func TestEndToEndUnreachableWritesNothing(t *testing.T) {
	cfg := testConfig(t, deadURL(t))

	a, err := NewAuditor(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAuditor: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if files := reportFiles(t, cfg.OutputDir); len(files) != 0 {
		t.Fatalf("expected no reports, got %v", files)
	}
}

func TestEndToEndFirstFailsSecondSucceeds(t *testing.T) {
	srv := pageServer(t, examplePage)
	cfg := testConfig(t, deadURL(t), srv.URL)

	a, err := NewAuditor(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAuditor: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	files := reportFiles(t, cfg.OutputDir)
	if len(files) != 1 || files[0] != report.FileName(time.Now(), srv.URL) {
		t.Fatalf("expected only the second url's report, got %v", files)
	}
}

func TestEndToEndNon2xxWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	cfg := testConfig(t, srv.URL)

	a, err := NewAuditor(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAuditor: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if files := reportFiles(t, cfg.OutputDir); len(files) != 0 {
		t.Fatalf("expected no reports, got %v", files)
	}
}

func TestNewAuditorFailsOnMalformedTargetsBeforeNetwork(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits++ }))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	if err := os.WriteFile(cfg.TargetsFile, []byte(`{"urls": [`), 0o644); err != nil {
		t.Fatalf("overwrite targets: %v", err)
	}

	_, err := NewAuditor(context.Background(), cfg, nil)
	if !errors.Is(err, targets.ErrConfigMalformed) {
		t.Fatalf("expected ErrConfigMalformed, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("no request should be made, got %d", hits)
	}
}

func TestNewAuditorFailsOnMissingTargets(t *testing.T) {
	cfg := testConfig(t)
	cfg.TargetsFile = filepath.Join(t.TempDir(), "missing.json")

	if _, err := NewAuditor(context.Background(), cfg, nil); !errors.Is(err, targets.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestNewAuditorWiresPublishers(t *testing.T) {
	received := make(chan string, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	srv := pageServer(t, examplePage)
	cfg := testConfig(t, srv.URL)
	cfg.PublishersFile = filepath.Join(t.TempDir(), "publishers.yaml")
	pubYAML := fmt.Sprintf("publishers:\n  - id: hook\n    type: http\n    http:\n      url: %s/reports\n", hook.URL)
	if err := os.WriteFile(cfg.PublishersFile, []byte(pubYAML), 0o644); err != nil {
		t.Fatalf("write publishers: %v", err)
	}

	a, err := NewAuditor(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAuditor: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	select {
	case path := <-received:
		if path != "/reports" {
			t.Fatalf("unexpected webhook path %q", path)
		}
	default:
		t.Fatalf("webhook did not receive the report event")
	}
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/semindex/internal/config"
	"github.com/hyperjump/semindex/internal/embedding"
	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/search"
	"github.com/hyperjump/semindex/internal/server"
	"github.com/hyperjump/semindex/internal/storage"
	"github.com/hyperjump/semindex/internal/vector"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	engine := search.NewEngine(vector.NewStore(), embedding.NewMockEmbedder(8),
		&config.SearchConfig{DefaultLimit: 10, MaxLimit: 100}, search.WithClusterSeed(3))
	srv := server.NewServer(engine, nil, &config.ServerConfig{}, zap.NewNop(), nil, "", nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--server", url}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })

	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "semindex 1.2.3")
	assert.Contains(t, out, "abc123")

	out, err = run(t, "", "version", "-o", "json")
	require.NoError(t, err)
	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, VersionInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}, info)
}

func TestRootCmd_RejectsUnknownOutput(t *testing.T) {
	_, err := run(t, "", "version", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestCommands_AgainstServer(t *testing.T) {
	ts := newTestAPI(t)

	out, err := run(t, ts.URL, "indices", "create", "docs", "--dimension", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "Created index docs (8 dimensions, cosine)")

	_, err = run(t, ts.URL, "indices", "create", "docs", "--dimension", "8")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	for _, doc := range []struct{ id, content string }{
		{"faq-1", "How do I reset my password?"},
		{"faq-2", "Where can I see my invoices?"},
		{"faq-3", "How do I change my billing address?"},
	} {
		_, err := run(t, ts.URL, "add", "docs", doc.content, "--id", doc.id, "--metadata", "category=faq", "--metadata", "level=2")
		require.NoError(t, err)
	}

	out, err = run(t, ts.URL, "-o", "json", "search", "docs", "How", "do", "I", "reset", "my", "password?", "--limit", "2")
	require.NoError(t, err)
	var results []*models.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "faq-1", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-4)
	assert.Equal(t, models.Number(2), results[0].Metadata["level"])

	out, err = run(t, ts.URL, "search", "docs", "invoices", "--filter", "category=other")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 0 results")

	out, err = run(t, ts.URL, "-o", "json", "similar", "docs", "faq-1")
	require.NoError(t, err)
	results = nil
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "faq-1", r.ID)
	}

	out, err = run(t, ts.URL, "-o", "json", "clusters", "docs", "-k", "2")
	require.NoError(t, err)
	var clusters []*models.Cluster
	require.NoError(t, json.Unmarshal([]byte(out), &clusters))
	total := 0
	for _, c := range clusters {
		total += len(c.Members)
	}
	assert.Equal(t, 3, total)

	out, err = run(t, ts.URL, "-o", "json", "gaps", "docs", "How do I reset my password?")
	require.NoError(t, err)
	var gaps []*models.Gap
	require.NoError(t, json.Unmarshal([]byte(out), &gaps))
	assert.Empty(t, gaps)

	_, err = run(t, ts.URL, "recommend", "docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile is empty")

	_, err = run(t, ts.URL, "recommend", "docs", "--interest", "billing", "--skill", "beginner")
	require.NoError(t, err)

	out, err = run(t, ts.URL, "trends", "docs", "--timeframe", "30d")
	require.NoError(t, err)
	assert.Contains(t, out, "Trend")

	out, err = run(t, ts.URL, "indices", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "docs")

	out, err = run(t, ts.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total vectors: 3")

	_, err = run(t, ts.URL, "indices", "drop", "docs")
	require.NoError(t, err)
	_, err = run(t, ts.URL, "similar", "docs", "faq-1")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestWatchCmd_NotEnabled(t *testing.T) {
	ts := newTestAPI(t)
	_, err := run(t, ts.URL, "watch", "list")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotImplemented, apiErr.Status)
	assert.Equal(t, "watch not enabled", apiErr.Message)
}

func TestCommands_FlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"search limit", []string{"search", "docs", "q", "--limit", "0"}, "--limit must be positive"},
		{"bad metric", []string{"indices", "create", "x", "--metric", "manhattan"}, "manhattan"},
		{"bad content type", []string{"add", "docs", "x", "--type", "hologram"}, "hologram"},
		{"bad metadata", []string{"add", "docs", "x", "--metadata", "novalue"}, "want key=value"},
		{"cluster k", []string{"clusters", "docs", "-k", "-1"}, "--k must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "http://127.0.0.1:1", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseMetadata(t *testing.T) {
	m, err := parseMetadata([]string{"category=billing", "level=3", "public=true", `tags=["a","b"]`, "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, models.String("billing"), m["category"])
	assert.Equal(t, models.Number(3), m["level"])
	assert.Equal(t, models.Bool(true), m["public"])
	assert.Equal(t, models.Strings("a", "b"), m["tags"])
	assert.Equal(t, models.String("a=b"), m["note"])

	m, err = parseMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = parseMetadata([]string{"=x"})
	assert.Error(t, err)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KiB", formatBytes(1024))
	assert.Equal(t, "1.5 MiB", formatBytes(1536*1024))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\nembedding:\n  provider: mock\n  dimensions: 16\n"), 0600))

	cfg, loaded, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 16, cfg.Embedding.Dimensions)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)

	_, _, err = loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestIndexFilesCmd(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "a.txt"), []byte("alpha notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "b.md"), []byte("# beta"), 0o644))

	dbPath := filepath.Join(dir, "indices.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := "storage:\n  database_path: " + dbPath + "\n  snapshot_enabled: true\n" +
		"embedding:\n  provider: mock\n  dimensions: 8\n" +
		"watch:\n  index: notes\n  extensions: [\".txt\", \".md\"]\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0600))

	out, err := run(t, "", "--config", cfgPath, "index-files", docs)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 2 file(s) into notes (2 vectors)")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer store.Close()
	snaps, err := store.LoadIndices(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "notes", snaps[0].Info.Name)
	assert.Len(t, snaps[0].Embeddings, 2)
}

func TestIndexFilesCmd_RequiresSnapshots(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("embedding:\n  provider: mock\n"), 0600))

	_, err := run(t, "", "--config", cfgPath, "index-files", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshots are disabled")
}

// lateWriter adds an embedding when stopped, like a debounced re-index that
// finishes during shutdown.
type lateWriter struct {
	engine *search.Engine
	t      *testing.T
}

func (l lateWriter) Stop() {
	_, err := l.engine.AddEmbedding(context.Background(), "notes",
		&models.Embedding{ID: "late", Vector: []float32{1, 0, 0, 0, 0, 0, 0, 0}, Content: "late"})
	require.NoError(l.t, err)
}

func TestStopAndSave_SnapshotsIncludeLateWrites(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.SnapshotEnabled = true
	cfg.Storage.DatabasePath = filepath.Join(dir, "indices.db")
	cfg.Embedding.Provider = "mock"
	cfg.Embedding.Dimensions = 8
	cfg.Watch.Index = "notes"

	components, err := initializeComponents(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer components.Close()

	require.NoError(t, components.StopAndSave(context.Background(), lateWriter{engine: components.Engine, t: t}, zap.NewNop()))

	snaps, err := components.Storage.LoadIndices(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	require.Len(t, snaps[0].Embeddings, 1)
	assert.Equal(t, "late", snaps[0].Embeddings[0].ID)
}

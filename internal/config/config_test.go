package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./data/db/documents.db"
watch:
  directories: ["./dev/sample"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "documents.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	if len(cfg.Watch.Directories) != 1 {
		t.Fatalf("watch directories: got %d", len(cfg.Watch.Directories))
	}
	wantWatch := filepath.Join(dir, "dev", "sample")
	if cfg.Watch.Directories[0] != wantWatch {
		t.Errorf("watch directory = %s, want %s", cfg.Watch.Directories[0], wantWatch)
	}
}

func TestLoad_indicesAndClustering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
embedding:
  provider: onnx
  dimensions: 8
clustering:
  seed: 42
  max_iterations: 5
indices:
  - name: docs
    dimension: 4
    metric: euclidean
  - name: notes
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.Provider != ProviderONNX {
		t.Errorf("provider = %s", cfg.Embedding.Provider)
	}
	if cfg.Clustering.Seed == nil || *cfg.Clustering.Seed != 42 || cfg.Clustering.MaxIterations != 5 {
		t.Errorf("clustering = %+v", cfg.Clustering)
	}
	if len(cfg.Indices) != 2 {
		t.Fatalf("indices: got %d", len(cfg.Indices))
	}
	if cfg.Indices[0].Metric != "euclidean" || cfg.Indices[0].Dimension != 4 {
		t.Errorf("first index = %+v", cfg.Indices[0])
	}
	if cfg.Indices[1].Metric != "cosine" || cfg.Indices[1].Dimension != 8 {
		t.Errorf("second index should inherit defaults, got %+v", cfg.Indices[1])
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 {
		t.Errorf("default limits: got %+v", cfg.Search)
	}
	if cfg.Embedding.Provider != ProviderMock {
		t.Errorf("default provider: got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Clustering.Seed != nil {
		t.Error("clustering must stay unseeded by default")
	}
	if cfg.Clustering.MaxIterations != 0 {
		t.Error("refinement must be off by default")
	}
	if len(cfg.Watch.Extensions) == 0 || cfg.Watch.Extensions[0] != ".txt" {
		t.Errorf("watch extensions: got %v", cfg.Watch.Extensions)
	}
	if cfg.Watch.Index != "" {
		t.Error("watch index should stay empty without directories")
	}
}

func TestApplyDefaults_WatchRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{Watch: WatchConfig{Directories: []string{"/tmp/docs"}}}
	ApplyDefaults(cfg)
	if cfg.Watch.Recursive == nil || !*cfg.Watch.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
	if cfg.Watch.Index != "files" {
		t.Errorf("watch index: got %q", cfg.Watch.Index)
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Recursive: &f}
		if got := w.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db", SnapshotEnabled: true},
		Indices: []IndexConfig{{Name: "docs", Dimension: 3, Metric: "dot_product"}},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if !loaded.Storage.SnapshotEnabled {
		t.Error("snapshot_enabled lost in round trip")
	}
	if len(loaded.Indices) != 1 || loaded.Indices[0].Metric != "dot_product" {
		t.Errorf("indices: got %+v", loaded.Indices)
	}
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("OPENAI_API_KEY=sk-from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvOpenAIKey, "")
	os.Unsetenv(EnvOpenAIKey)
	t.Setenv(EnvEmbeddingProvider, " OpenAI ")
	t.Setenv(EnvDebug, "true")

	cfg := &Config{}
	ApplyDefaults(cfg)
	if err := ApplyEnv(cfg, envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.OpenAIAPIKey != "sk-from-file" {
		t.Errorf("api key: got %q", cfg.Embedding.OpenAIAPIKey)
	}
	if cfg.Embedding.Provider != ProviderOpenAI {
		t.Errorf("provider: got %q", cfg.Embedding.Provider)
	}
	if !cfg.Debug {
		t.Error("debug should be enabled from env")
	}
}

func TestApplyEnv_invalidDebug(t *testing.T) {
	t.Setenv(EnvDebug, "maybe")
	if err := ApplyEnv(&Config{}, filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Error("expected error for invalid debug flag")
	}
}

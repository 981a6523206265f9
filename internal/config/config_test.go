package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != ":8080" {
		t.Errorf("Listen = %q, want :8080", cfg.Server.Listen)
	}
	if cfg.Chunking.Size != 2500 || cfg.Chunking.Overlap != 500 {
		t.Errorf("Chunking = %+v, want size 2500 overlap 500", cfg.Chunking)
	}
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("Provider = %q, want ollama", cfg.Embedding.Provider)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "focal.toml")
	content := `
[server]
listen = ":9000"

[chunking]
size = 1000
overlap = 200

[embedding]
provider = "openai"
model = "text-embedding-3-small"
api_key = "from-file"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != ":9000" {
		t.Errorf("Listen = %q", cfg.Server.Listen)
	}
	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 200 {
		t.Errorf("Chunking = %+v", cfg.Chunking)
	}
	if cfg.Embedding.APIKey != "from-file" {
		t.Errorf("APIKey = %q, want from-file", cfg.Embedding.APIKey)
	}
	// Sections the file omits keep defaults.
	if cfg.Cache.Dir != "vector_cache" {
		t.Errorf("Cache.Dir = %q, want default", cfg.Cache.Dir)
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "focal.toml")
	if err := os.WriteFile(path, []byte("[embedding]\napi_key = \"from-file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Embedding.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want from-env", cfg.Embedding.APIKey)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing config path")
	}
}

func TestInvalidChunkingRepaired(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "focal.toml")
	if err := os.WriteFile(path, []byte("[chunking]\nsize = 100\noverlap = 150\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunking.Overlap >= cfg.Chunking.Size {
		t.Errorf("overlap %d not repaired below size %d", cfg.Chunking.Overlap, cfg.Chunking.Size)
	}
}

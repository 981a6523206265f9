// Package config loads the focal configuration file and fills in
// sensible defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/focal-dev/focal/internal/chunker"
	"github.com/focal-dev/focal/internal/embedding"
)

// Config holds every tunable for the server and CLI.
type Config struct {
	Server    Server    `toml:"server"`
	Data      Data      `toml:"data"`
	Cache     CacheCfg  `toml:"cache"`
	Chunking  Chunking  `toml:"chunking"`
	Embedding Embedding `toml:"embedding"`
}

type Server struct {
	Listen string `toml:"listen"`
}

type Data struct {
	Dir          string `toml:"dir"`
	CategoryFile string `toml:"category_file"`
	TopicsFile   string `toml:"topics_file"`
}

type CacheCfg struct {
	Dir string `toml:"dir"`
}

type Chunking struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

type Embedding struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
	Dims     int    `toml:"dims"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:   Server{Listen: ":8080"},
		Data:     Data{Dir: "data", CategoryFile: "category.json", TopicsFile: "topics.json"},
		Cache:    CacheCfg{Dir: "vector_cache"},
		Chunking: Chunking{Size: chunker.DefaultSize, Overlap: chunker.DefaultOverlap},
		Embedding: Embedding{
			Provider: "ollama",
		},
	}
}

// Load reads a TOML config file on top of the defaults. An empty path
// returns the defaults unchanged; a named file must exist and parse.
// OPENAI_API_KEY in the environment overrides the file's api_key so
// secrets can stay out of the config.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	}
	if cfg.Chunking.Size <= 0 {
		cfg.Chunking.Size = chunker.DefaultSize
	}
	if cfg.Chunking.Overlap < 0 || cfg.Chunking.Overlap >= cfg.Chunking.Size {
		cfg.Chunking.Overlap = cfg.Chunking.Size / 5
	}
	return cfg, nil
}

// EmbeddingSettings converts the config section to provider settings.
func (c Config) EmbeddingSettings() embedding.Settings {
	return embedding.Settings{
		Provider: c.Embedding.Provider,
		Model:    c.Embedding.Model,
		BaseURL:  c.Embedding.BaseURL,
		APIKey:   c.Embedding.APIKey,
		Dims:     c.Embedding.Dims,
	}
}

// ChunkerOptions converts the config section to chunker options.
func (c Config) ChunkerOptions() chunker.Options {
	return chunker.Options{Size: c.Chunking.Size, Overlap: c.Chunking.Overlap}
}

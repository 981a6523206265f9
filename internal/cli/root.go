// Package cli implements the focal CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/focal-dev/focal/internal/catalog"
	"github.com/focal-dev/focal/internal/config"
	"github.com/focal-dev/focal/internal/embedding"
	"github.com/focal-dev/focal/internal/fetch"
	"github.com/focal-dev/focal/internal/focus"
	"github.com/focal-dev/focal/internal/logger"
	"github.com/focal-dev/focal/internal/vcache"
)

var (
	configPath  string
	verboseFlag bool
	formatFlag  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "focal",
	Short: "Difficulty-aware content retrieval for curriculum text",
	Long:  "Extracts topics from curriculum books, chunks them, and retrieves the most relevant passages per difficulty. Embedding-backed, cache-friendly, single binary.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (TOML)")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
}

// pipeline bundles the components most commands need.
type pipeline struct {
	cfg     config.Config
	catalog *catalog.Catalog
	fetcher *fetch.Fetcher
	focuser *focus.Focuser
}

func newPipeline() *pipeline {
	cfg := loadConfig()
	cat := catalog.Load(cfg.Data.CategoryFile, cfg.Data.TopicsFile)

	emb, err := embedding.New(cfg.EmbeddingSettings())
	if err != nil {
		exitErr("embedding provider", err)
	}
	cache, err := vcache.New(cfg.Cache.Dir)
	if err != nil {
		exitErr("open cache", err)
	}

	return &pipeline{
		cfg:     cfg,
		catalog: cat,
		fetcher: fetch.New(cat, cfg.Data.Dir),
		focuser: focus.NewWithChunking(emb, cache, cfg.ChunkerOptions()),
	}
}

func openCache() *vcache.Cache {
	cfg := loadConfig()
	cache, err := vcache.New(cfg.Cache.Dir)
	if err != nil {
		exitErr("open cache", err)
	}
	return cache
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

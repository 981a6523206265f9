package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the vector index cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Run:   runCacheStats,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached vector indexes",
		Run:   runCacheClear,
	}
	clearCmd.Flags().Int("older-than-days", 0, "Only remove entries older than this many days (0 removes all)")

	cacheCmd.AddCommand(statsCmd, clearCmd)
	RootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) {
	cache := openCache()
	stats, err := cache.Stats()
	if err != nil {
		exitErr("cache stats", err)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}

func runCacheClear(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("older-than-days")

	cache := openCache()
	removed, err := cache.Clear(days)
	if err != nil {
		exitErr("cache clear", err)
	}
	fmt.Printf("removed %d cache entr%s\n", removed, plural(removed, "y", "ies"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

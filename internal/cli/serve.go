package cli

import (
	"github.com/spf13/cobra"

	"github.com/focal-dev/focal/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Run:   runServe,
	}

	cmd.Flags().String("listen", "", "Listen address (overrides config)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	p := newPipeline()

	addr, _ := cmd.Flags().GetString("listen")
	if addr == "" {
		addr = p.cfg.Server.Listen
	}

	srv := server.New(p.catalog, p.fetcher, p.focuser)
	if err := srv.ListenAndServe(addr); err != nil {
		exitErr("serve", err)
	}
}

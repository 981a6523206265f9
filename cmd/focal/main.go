package main

import (
	"os"

	"github.com/focal-dev/focal/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/gzhole/llmgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

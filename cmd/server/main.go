package main

import (
	"fmt"
	"os"

	"github.com/maxviazov/courtside/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

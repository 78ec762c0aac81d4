package main

import (
	"context"
	"fmt"
	"os"

	"github.com/iudanet/cashbook/internal/client/cli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	root := cli.NewRootCommand(cli.Options{
		Build: cli.BuildInfo{
			Version:   Version,
			BuildDate: BuildDate,
			GitCommit: GitCommit,
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

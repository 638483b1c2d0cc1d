// Command prsync synchronises closed GitHub pull requests into a database.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/prsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/prsync/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(context.Background()); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// Command aobun serves a web UI that strips ruby and editorial notes from
// Aozora Bunko text files.
package main

import (
	"os"

	"github.com/custodia-labs/aobun/internal/adapters/driving/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

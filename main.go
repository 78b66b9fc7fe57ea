// Command fatcat hunts down the fat files hogging your disk space.
package main

import (
	"errors"
	"os"

	"github.com/idelchi/fatcat/internal/cli"
)

// version is set at build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		code := cli.ExitUsage

		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}

		cli.PrintError(os.Stderr, err, code == cli.ExitUsage)
		os.Exit(code)
	}
}

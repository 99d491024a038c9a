// Package main is the entry point for the ethlite CLI.
package main

import (
	"os"

	"github.com/ananthanir/ethlite/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

// Package main is the drizzleport command.
package main

import (
	"os"

	"github.com/leapstack-labs/drizzleport/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

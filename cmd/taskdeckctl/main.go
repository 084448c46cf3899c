// Package main is the entry point for the taskdeckctl CLI.
package main

import (
	"os"

	"github.com/taskdeck/taskdeck/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}

package main

import (
	"os"

	"github.com/dtroode/profilekeeper/cmd/profilectl/commands"
	"github.com/dtroode/profilekeeper/internal/backend"
)

var buildVersion = "dev" // set by ldflags

func main() {
	root := commands.NewRootCommand(backend.Open)
	root.Version = buildVersion

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

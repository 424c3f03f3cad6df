package main

import (
	"os"

	"agenteval/cmd/agenteval/commands"
)

func main() {
	root := commands.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

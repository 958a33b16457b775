package main

import (
	"os"

	"campuslens/cmd/campuslens/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/proliance-rcm/phil/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

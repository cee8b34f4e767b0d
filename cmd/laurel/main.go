package main

import (
	"os"

	"github.com/laurelhq/laurel/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		os.Exit(1)
	}
}

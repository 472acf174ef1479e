package main

import (
	"os"

	"github.com/noah-isme/sma-seating-api/cmd/seatctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/montyhq/monty/cmd/monty/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

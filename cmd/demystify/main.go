package main

import (
	"os"

	"github.com/tomoemon/demystify/cmd/demystify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/3lfar7/tripadvparser/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

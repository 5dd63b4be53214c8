package main

import (
	"os"

	"github.com/swiftresponder/swiftresponder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

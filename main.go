package main

import (
	"os"

	"github.com/ankit-iitb/sandstorm-simulator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/scottfrazer/blog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/Shrike-Security/shrike-guard-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

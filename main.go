package main

import (
	"os"

	"github.com/conneroisu/pagekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

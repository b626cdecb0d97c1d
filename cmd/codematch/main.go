package main

import (
	"os"

	"github.com/solatis/codematch/cmd/codematch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/Patreos123/build-push-action/src/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

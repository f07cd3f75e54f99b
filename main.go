package main

import (
	"os"

	"github.com/frontdesk-ai/frontdesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

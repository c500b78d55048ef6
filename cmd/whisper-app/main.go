package main

import (
	"os"

	"github.com/syuuma-ito/whisper-app/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"forge/internal/cli"
	"forge/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.ErrorMsg("%v", err)
		os.Exit(1)
	}
}

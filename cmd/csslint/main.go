package main

import (
	"os"

	"csslint/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}

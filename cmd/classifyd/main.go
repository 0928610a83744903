package main

import (
	"os"

	"classifyd/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}

package main

import (
	"os"

	"detectd/internal/cli"
)

func main() {
	os.Exit(cli.MainWithArgs(os.Args[1:]))
}

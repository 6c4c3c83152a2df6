package main

import (
	"context"
	"fmt"
	"os"

	"github.com/marcelocantos/gosh/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	code := 0
	root := cli.NewRootCommand(version, cli.StdStreams(), &code)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "gosh: %v\n", err)
		return 1
	}
	return code
}

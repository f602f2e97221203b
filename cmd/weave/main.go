package main

import (
	"os"

	"github.com/go-drift/weave/cmd/weave/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

package main

import "github.com/krpsim/krpsim-go/internal/adapters/cli"

func main() {
	cli.Execute()
}

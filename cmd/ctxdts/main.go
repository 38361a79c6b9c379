package main

import "github.com/usestring/ctxdts/internal/cli"

func main() {
	cli.Execute()
}

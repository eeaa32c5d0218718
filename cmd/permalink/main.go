package main

import "github.com/daangn/permalink/internal/cli"

func main() {
	cli.Run()
}

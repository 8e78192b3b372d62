package main

import "github.com/cbout22/gh-asset/internal/cli"

func main() {
	cli.Execute()
}

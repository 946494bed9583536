package main

import "github.com/leeforge/squash/cli"

func main() {
	cli.Execute()
}

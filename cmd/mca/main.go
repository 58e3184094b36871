package main

import "github.com/kearry/mca/internal/cli"

func main() {
	cli.Main()
}

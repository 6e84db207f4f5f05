package main

import "github.com/ppiankov/ontoguard/internal/cli"

func main() {
	cli.Execute()
}

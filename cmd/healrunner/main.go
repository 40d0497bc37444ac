package main

import "github.com/qaforge/healrunner/pkg/cli"

func main() {
	cli.Execute()
}

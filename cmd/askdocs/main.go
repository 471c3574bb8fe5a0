package main

import "github.com/askmydocs/askdocs/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/emiliopalmerini/dissolvo/internal/cli"

func main() {
	cli.Execute()
}

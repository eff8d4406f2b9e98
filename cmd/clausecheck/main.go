package main

import "clausecheck/internal/cli"

func main() {
	cli.Execute()
}

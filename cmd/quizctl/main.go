package main

import "github.com/mcoot/trackquiz/internal/cli"

func main() {
	cli.Execute()
}

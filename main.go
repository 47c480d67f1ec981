package main

import "promoreel/internal/cli"

func main() {
	cli.Execute()
}

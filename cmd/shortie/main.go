package main

import "shortie/internal/cli"

func main() {
	cli.Main()
}

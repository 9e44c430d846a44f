package main

import "github.com/mamadbah2/landscaper/internal/cli"

func main() {
	cli.Execute()
}

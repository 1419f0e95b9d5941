package main

import "github.com/vietddude/catalog/internal/cli"

func main() {
	cli.Execute()
}

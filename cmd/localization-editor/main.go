package main

import "localization-editor/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/ragzy-ai/ragzy-api/cmd"

func main() {
	cmd.Execute()
}

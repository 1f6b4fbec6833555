package main

import "github.com/itsmostafa/autoindex/cmd"

func main() {
	cmd.Execute()
}

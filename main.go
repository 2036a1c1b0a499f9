package main

import "github.com/masad-frost/ts-node/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/example/emojiscrub/cmd"

func main() {
	cmd.Execute()
}

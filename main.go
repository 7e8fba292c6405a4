package main

import "github.com/chukul/split-token-publisher/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/Glenn-2k/holidaze/cmd"

func main() {
	cmd.Execute()
}

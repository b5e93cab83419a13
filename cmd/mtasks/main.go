package main

import "mtasks/cmd/mtasks/commands"

func main() {
	commands.Execute()
}

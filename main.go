package main

import "github.com/brk3/habitbattles/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/venlin/kern/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/username/salespulse/src/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/clnbrd/clnbrd/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/mkobayashi/ytingest/cmd"

func main() {
	cmd.Execute()
}

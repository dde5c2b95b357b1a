package main

import "github.com/vibelab/vibrascope/cmd"

func main() {
	cmd.Execute()
}

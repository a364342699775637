package main

import "github.com/YuminosukeSato/vfdt/cmd/vfdt/cmd"

func main() {
	cmd.Execute()
}

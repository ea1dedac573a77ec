package main

import "github.com/askvallejos/hatchtest/cmd"

var version = "v0.3.0"

func main() {
	cmd.Execute(version)
}

package main

import "github.com/kasplanner/kasplan/cmd"

func main() {
	cmd.Execute()
}

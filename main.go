package main

import "github.com/robmorgan/notate/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/twiced-technology-gmbh/armsboard/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/darmiel/cpd/cmd"

func main() {
	cmd.Execute()
}

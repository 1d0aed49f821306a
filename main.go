package main

import "github.com/gaurav-prasanna/blockpipe/cmd"

func main() {
	cmd.Execute()
}

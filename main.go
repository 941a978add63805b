package main

import "github.com/mkerrigan/fitcluster/cmd"

func main() {
	cmd.Execute()
}

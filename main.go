package main

import "github.com/routelab/ripsim/cmd"

func main() {
	cmd.Execute()
}

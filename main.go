package main

import "github.com/lalibi/rodi-kremastos/cmd"

func main() {
	cmd.Execute()
}

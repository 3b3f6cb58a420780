package main

import "techshop/app/cli/cmd"

func main() {
	cmd.Execute()
}

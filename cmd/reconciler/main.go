package main

import "repo-reconciler/cmd"

func main() {
	cmd.Execute()
}

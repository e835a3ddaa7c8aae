package main

import "github.com/user/tripagent/cmd"

func main() {
	cmd.Execute()
}

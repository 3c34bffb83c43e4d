package main

import "pwvault/cmd/pwvault/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/smartcontractkit/scaffold-cli/cmd"

func main() {
	cmd.Execute()
}

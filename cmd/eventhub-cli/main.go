package main

import "github.com/nfrund/eventhub/cmd/eventhub-cli/cmd"

func main() {
	cmd.Execute()
}

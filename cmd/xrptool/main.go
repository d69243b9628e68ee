package main

import "github.com/polysola/copilotxrp/internal/cli"

func main() {
	cli.Execute()
}

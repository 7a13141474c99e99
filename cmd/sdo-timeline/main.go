package main

import "github.com/pfrederiksen/sdo-timeline/internal/cli"

func main() {
	cli.Execute()
}

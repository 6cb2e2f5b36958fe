package main

import "github.com/thaivisachecklist/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}

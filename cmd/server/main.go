package main

import "github.com/easypark/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}

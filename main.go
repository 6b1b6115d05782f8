package main

import "github/chapool/go-coldwallet/cmd"

func main() {
	cmd.Execute()
}

package main

import "device-sync/cmd"

func main() {
	cmd.Execute()
}

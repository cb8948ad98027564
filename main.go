package main

import "sparkmatch-backend/cmd"

func main() {
	cmd.Run()
}

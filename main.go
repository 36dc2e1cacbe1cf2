package main

import "doggydate-backend/cmd"

func main() {
	cmd.Run()
}

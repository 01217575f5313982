package main

import "ewaste-recycle-backend/cmd"

func main() {
	cmd.Run()
}

package main

import "github.com/Vallehtelia/StupidHack25/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/paulmure/hogmild-sim/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/cmd"

func main() {
	cmd.Execute()
}

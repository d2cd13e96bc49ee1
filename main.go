package main

import (
	"backline/cmd"
)

func main() {
	cmd.Execute()
}

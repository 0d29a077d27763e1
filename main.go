package main

import (
	"github.com/savora/savora/cmd"
)

func main() {
	cmd.Execute()
}

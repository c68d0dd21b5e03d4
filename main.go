package main

import (
	"github.com/AzielCF/az-press/cmd"
)

func main() {
	cmd.Execute()
}

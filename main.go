package main

import (
	"os"

	"github.com/tranvh/hiregate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

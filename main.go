package main

import (
	"os"

	"github.com/Medic423/medport-sub003/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/bersena911/quizapi/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/markstash/markstash/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/bapti-church/bapti-web/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

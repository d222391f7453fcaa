package main

import (
	"os"

	"github.com/SettingsForge/SettingsForge/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/cinewatch/showtime-scraper/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		os.Exit(1)
	}
}

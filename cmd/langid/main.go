package main

import (
	"os"

	"horse.fit/langid/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}

package main

import (
	"log"

	"github.com/lightkeep/lightkeep/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ lightkeep failed to start: %v", err)
	}
}

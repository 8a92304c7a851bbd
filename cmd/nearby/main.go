package main

import (
	"log"

	"github.com/MrSnakeDoc/nearby/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ nearby failed to start: %v", err)
	}
}

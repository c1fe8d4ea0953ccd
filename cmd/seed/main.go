package main

import (
	"context"
	"log"

	"github.com/mdemidov/product_api/internal/config"
	"github.com/mdemidov/product_api/internal/seed"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := seed.Run(context.Background(), db); err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Println("seed complete")
}

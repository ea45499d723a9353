package main

import (
	"context"
	"database/sql"
	"delivery-tour-service/internal/adapters/cache"
	"delivery-tour-service/internal/adapters/repositories"
	"delivery-tour-service/internal/config"
	"delivery-tour-service/internal/platform/db"
	"delivery-tour-service/internal/ports"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadDotEnv()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Servers sharing a Redis path cache must not keep paths of the old map.
	var caches []ports.PathCache
	if redisURL := strings.TrimSpace(os.Getenv("REDIS_URL")); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("parse REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		caches = append(caches, cache.NewRedisPathCache(client, 0))
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/lyon_small.json")
	initAndSeed(context.Background(), conn, seedPath, caches)
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, caches []ports.PathCache) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding database from %s...", seedPath)
	if err := repositories.SeedDatabase(ctx, conn, repositories.Postgres, seedPath, caches...); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}

package main

import (
	"context"
	"database/sql"
	"delivery-tour-service/internal/adapters/cache"
	"delivery-tour-service/internal/adapters/repositories"
	"delivery-tour-service/internal/api"
	"delivery-tour-service/internal/config"
	"delivery-tour-service/internal/platform/db"
	"delivery-tour-service/internal/ports"
	"delivery-tour-service/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or SQLite, Redis) behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	conn, dialect, err := openDB(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	pathCache, closeCache, err := openPathCache(ctx, cfg, conn, dialect)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	// The local database is reseeded on every start, so paths cached for
	// the previous copy of the map must go.
	if dialect == repositories.Sqlite {
		if err := repositories.SeedDatabase(ctx, conn, repositories.Sqlite, cfg.SeedPath, pathCache); err != nil {
			log.Fatal(err)
		}
	}

	var (
		maps     *repositories.SQLRoadMapRepository
		requests *repositories.SQLTourRequestRepository
	)
	if dialect == repositories.Postgres {
		maps = repositories.NewSQLRoadMapRepository(conn)
		requests = repositories.NewSQLTourRequestRepository(conn)
	} else {
		maps = repositories.NewSqliteRoadMapRepository(conn)
		requests = repositories.NewSqliteTourRequestRepository(conn)
	}

	computer := services.NewTourComputer(services.Settings{
		Schedule: services.Schedule{
			DepartHour:   cfg.DepartHour,
			SpeedKmh:     cfg.SpeedKmh,
			DeliveryTime: cfg.DeliveryTime,
			WindowSize:   cfg.WindowSize,
		},
		PermutationLimit: cfg.PermutationMax,
		SearchBudget:     cfg.SearchBudget,
		Workers:          cfg.ComputeWorkers,
	}, pathCache)

	router := api.NewRouter(api.Deps{
		Maps:     maps,
		Requests: requests,
		Computer: computer,
		MapID:    cfg.MapID,
		Now:      time.Now,
	})

	// Write timeout leaves room for the search budget of a few tours in a row.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening addr=:%s db=%s map=%s", cfg.Port, dialect, cfg.MapID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// openDB connects to Postgres when DATABASE_URL is set and to the local
// SQLite file otherwise. The schema is created when missing.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, repositories.Dialect, error) {
	open, dialect := func() (*sql.DB, error) { return db.OpenSqlite(cfg.DBPath) }, repositories.Sqlite
	if cfg.DatabaseURL != "" {
		open, dialect = func() (*sql.DB, error) { return db.Open(cfg.DatabaseURL) }, repositories.Postgres
	}

	conn, err := open()
	if err != nil {
		return nil, dialect, err
	}
	if err := repositories.InitSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, dialect, fmt.Errorf("openDB: %w", err)
	}
	return conn, dialect, nil
}

// openPathCache prefers Redis when REDIS_URL is set and falls back to the
// path_cache table of the database.
func openPathCache(
	ctx context.Context,
	cfg *config.Config,
	conn *sql.DB,
	dialect repositories.Dialect,
) (ports.PathCache, func(), error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("openPathCache: parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("openPathCache: ping redis: %w", err)
		}

		return cache.NewRedisPathCache(client, cfg.PathCacheTTL), func() { client.Close() }, nil
	}

	if dialect == repositories.Postgres {
		return cache.NewSQLPathCache(conn), func() {}, nil
	}
	return cache.NewSqlitePathCache(conn), func() {}, nil
}

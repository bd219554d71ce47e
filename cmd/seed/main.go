// seed replaces the contents of the students table with the sample data
// set, for trying out search and sort locally.
//
//	go run ./cmd/seed --config=config/local.yaml
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage/seed"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

func main() {
	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, inserted, err := seed.Populate(ctx, store)
	if err != nil {
		log.Error("failed to populate database", slog.String("error", err.Error()))
		store.Close()
		os.Exit(1)
	}

	log.Info("sample students loaded",
		slog.String("path", cfg.StoragePath),
		slog.Int64("deleted", deleted),
		slog.Int("inserted", inserted))
}

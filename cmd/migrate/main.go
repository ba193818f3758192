package main

import (
	"context"
	"flag"
	"time"

	mongoMigration "classbook/internal/migrations/mongo"
	"classbook/pkg/config"
	"classbook/pkg/seed"
)

const JobName = "mongo-migration"

func main() {
	skipSeed := flag.Bool("skip-seed", false, "only ensure collections and indexes")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown(cfg.Log)
	cfg.Log.Info("Starting Mongo migration job")

	var catalog *seed.Catalog
	if !*skipSeed {
		var err error
		if catalog, err = seed.Load(cfg.SeedFile); err != nil {
			cfg.Log.Fatal("Failed to load seed catalog", "error", err)
		}
	}

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, catalog, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}

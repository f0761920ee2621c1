package main

import (
	"context"
	"fmt"
	"log"
	"time"

	mongoMigration "rentora/internal/migrations/mongo"
	"rentora/pkg/config"

	"github.com/joho/godotenv"
)

const JobName = "mongo-migration"

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.Log.Info("Starting Mongo migration job")
	defer cfg.GracefulShutdown()

	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo.Client, cfg.MongoDatabaseName); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println("Migration completed successfully.")
}

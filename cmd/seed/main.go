package main

import (
	"log"
	"os"

	"github.com/yourusername/testhub-api/internal/config"
	pgRepo "github.com/yourusername/testhub-api/internal/repository/postgres"
	"github.com/yourusername/testhub-api/internal/service"
	"github.com/yourusername/testhub-api/pkg/database"
)

// Seeds the database with the role catalog, the default admin account and
// demo content: a demo author plus one published sample test.
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	seedService := service.NewSeedService(
		pgRepo.NewUserRepo(db),
		pgRepo.NewRoleRepo(db),
		pgRepo.NewTestRepo(db),
		pgRepo.NewQuestionRepo(db),
		cfg.Admin,
	)

	if err := seedService.EnsureCoreData(); err != nil {
		log.Printf("Failed to seed core data: %v", err)
		os.Exit(1)
	}
	if err := seedService.SeedDemoContent(); err != nil {
		log.Printf("Failed to seed demo content: %v", err)
		os.Exit(1)
	}

	log.Println("Seeding finished")
}

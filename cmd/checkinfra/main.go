package main

import (
	"context"
	"fmt"
	"log"

	"github.com/you/rakshasetu/internal/config"
	"github.com/you/rakshasetu/internal/infrastructure/database"
	"github.com/you/rakshasetu/internal/infrastructure/repositories"
)

// Verifies the configured database and redis are reachable before a deploy
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DSN == "" {
		log.Fatal("DATABASE_DSN is not set")
	}

	fmt.Println("RakshaSetu infrastructure check")
	fmt.Println("===============================")

	db, err := database.Open(cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	fmt.Println("✓ Database connection successful")

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}
	fmt.Println("✓ AutoMigrate completed successfully")

	var userCount int64
	if err := db.Model(&repositories.DBUser{}).Count(&userCount).Error; err != nil {
		log.Fatalf("Failed to query users table: %v", err)
	}
	fmt.Printf("✓ Users table accessible (current count: %d)\n", userCount)

	if cfg.ChallengeStore != config.StoreRedis {
		fmt.Printf("- Challenge store is %q, skipping redis\n", cfg.ChallengeStore)
		return
	}

	rdb, err := database.ConnectRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to ping redis: %v", err)
	}
	defer rdb.Close()
	fmt.Printf("✓ Redis reachable at %s\n", cfg.RedisAddr)
}

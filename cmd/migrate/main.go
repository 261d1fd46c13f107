package main

import (
	"log"
	"os"

	"orquix-backend/internal/model"
	"orquix-backend/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions & Enums (Things GORM AutoMigrate doesn't do perfectly)
	log.Println("Step 1: Setting up Extensions and Enums...")

	setupSQL := []string{
		// Extensions
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,

		// Enums (Idempotent creation)
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'ia_prompt_status') THEN CREATE TYPE ia_prompt_status AS ENUM ('generated', 'edited', 'executed'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'synthesis_quality') THEN CREATE TYPE synthesis_quality AS ENUM ('high', 'medium', 'low', 'failed'); END IF; END $$;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models (The Core Task)
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.Project{},
		&model.ContextChunk{},
		&model.InteractionEvent{},
		&model.IAPrompt{},
		&model.IAResponse{},
		&model.ModeratedSynthesis{},
		&model.Chat{},
		&model.Session{},
		&model.ContextSession{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Vector Index
	log.Println("Step 3: Creating Vector Index...")

	postMigrationSQL := []string{
		// IVFFlat over cosine distance. Matches the <=> operator used by
		// similarity search.
		`CREATE INDEX IF NOT EXISTS idx_context_chunks_embedding
		 ON context_chunks USING ivfflat (content_embedding vector_cosine_ops) WITH (lists = 100);`,
		// L2 variant for <-> queries.
		`CREATE INDEX IF NOT EXISTS idx_context_chunks_embedding_l2
		 ON context_chunks USING ivfflat (content_embedding vector_l2_ops) WITH (lists = 100);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}

package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Usage: go run scripts/manage_tables.go [create|drop]
// Creates or drops the environment-prefixed tables the server expects.
func main() {
	if len(os.Args) != 2 || (os.Args[1] != "create" && os.Args[1] != "drop") {
		log.Fatal("usage: manage_tables [create|drop]")
	}
	action := os.Args[1]

	dbURL := os.Getenv("SUPABASE_DB_URL")
	if dbURL == "" {
		log.Fatal("SUPABASE_DB_URL environment variable is required")
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	var prefix string
	if env != "prod" {
		prefix = env + "_"
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	var ddl string
	switch action {
	case "create":
		ddl = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]sconversations (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				turns JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);
			CREATE INDEX IF NOT EXISTS %[1]sconversations_user_updated_idx
				ON %[1]sconversations (user_id, updated_at DESC);

			CREATE TABLE IF NOT EXISTS %[1]suser_preferences (
				user_id UUID PRIMARY KEY,
				preferences JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);

			CREATE TABLE IF NOT EXISTS %[1]sfeedback (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
				comment TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL
			);
			CREATE INDEX IF NOT EXISTS %[1]sfeedback_user_created_idx
				ON %[1]sfeedback (user_id, created_at DESC);
		`, prefix)
	case "drop":
		ddl = fmt.Sprintf(`
			DROP TABLE IF EXISTS %[1]sconversations CASCADE;
			DROP TABLE IF EXISTS %[1]suser_preferences CASCADE;
			DROP TABLE IF EXISTS %[1]sfeedback CASCADE;
		`, prefix)
	}

	if _, err := db.Exec(ddl); err != nil {
		log.Fatalf("Failed to %s tables: %v", action, err)
	}

	past := map[string]string{"create": "created", "drop": "dropped"}[action]
	fmt.Printf("Tables %s successfully (prefix: %q)\n", past, prefix)
}

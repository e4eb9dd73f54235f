// seed inserts a verified test user and a batch of tasks into the local dev
// database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/emailhash"
	"github.com/taskhive/taskhive/internal/infrastructure/postgres"
	"github.com/taskhive/taskhive/internal/password"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "local-dev-only-password"
)

var taskTitles = []string{
	"Write the onboarding doc",
	"Review the billing PR",
	"Rotate staging credentials",
	"File the expense report",
	"Plan the sprint retro",
	"Answer support tickets",
	"Update the runbook",
	"Clean up feature flags",
	"Prepare the demo",
	"Archive stale branches",
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}
	emailKey := os.Getenv("EMAIL_HASH_KEY")
	if len(emailKey) < 32 {
		log.Fatal("EMAIL_HASH_KEY must be at least 32 bytes")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	emailHash := emailhash.NewHasher([]byte(emailKey)).Hash(seedEmail)
	passwordHash, err := password.NewHasher().Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert test user, already verified
	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (id, email_hash, password_hash, email_verified)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email_hash) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		uuid.NewString(), emailHash, passwordHash,
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	// Insert tasks, idempotent on title per user
	var inserted int
	for i, title := range taskTitles {
		status := "open"
		if i%3 == 0 {
			status = "done"
		}
		tag, err := pool.Exec(ctx, `
			INSERT INTO tasks (id, user_id, title, status)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (
				SELECT 1 FROM tasks WHERE user_id = $2 AND title = $3
			)`,
			uuid.NewString(), userID, title, status,
		)
		if err != nil {
			log.Fatalf("insert task %q: %v", title, err)
		}
		inserted += int(tag.RowsAffected())
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:     %s (password: %s)\n", seedEmail, seedPassword)
	fmt.Printf("  Tasks:    %d inserted, %d already present\n", inserted, len(taskTitles)-inserted)
}

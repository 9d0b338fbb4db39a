// seed bootstraps the local dev schema and inserts a verified test user
// with a batch of contacts. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vmarchenko/contacts-api/internal/auth"
	"github.com/vmarchenko/contacts-api/internal/infrastructure/postgres"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "password123"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS users (
	id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email          TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	is_verified    BOOLEAN NOT NULL DEFAULT FALSE,
	refresh_token  TEXT,
	avatar_url     TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS contacts (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	owner_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL,
	phone       TEXT NOT NULL,
	birthday    DATE,
	about       TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS contacts_owner_id_idx ON contacts (owner_id);
`

type contactSpec struct {
	name  string
	email string
	phone string
	// days from today until the birthday; negative means already passed this year
	birthdayOffset int
	noBirthday     bool
	about          string
}

var contacts = []contactSpec{
	// Birthdays inside the default 7-day digest window
	{"Olena Kovalenko", "olena@example.com", "+380501234567", 1, false, "college roommate"},
	{"Petro Shevchenko", "petro@example.com", "+380671112233", 3, false, ""},
	{"Iryna Bondar", "iryna@example.com", "+380931234567", 6, false, "works at the bakery"},

	// Just outside the window
	{"Taras Melnyk", "taras@example.com", "+380661234567", 10, false, ""},
	{"Sofia Tkachenko", "sofia@example.com", "+380501112244", 20, false, ""},

	// Already passed this year — next occurrence is months away
	{"Andriy Kravets", "andriy@example.com", "+380971234567", -30, false, ""},
	{"Natalia Polishchuk", "natalia@example.com", "+380631234567", -90, false, "dentist"},

	// No birthday on record
	{"Dmytro Lysenko", "dmytro@example.com", "+380991234567", 0, true, ""},

	// Far-future birthdays
	{"Kateryna Moroz", "kateryna@example.com", "+380681234567", 120, false, ""},
	{"Yuriy Savchenko", "yuriy@example.com", "+380731234567", 200, false, "plays chess on Sundays"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	hash, err := auth.NewBcryptHasher().Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert the test user, already verified so protected routes work
	// without the email round-trip.
	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, is_verified)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		seedEmail, hash,
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	today := time.Now()

	// Insert contacts, skip any that already exist (idempotent re-runs)
	var inserted, skipped int
	for _, spec := range contacts {
		var birthday *time.Time
		if !spec.noBirthday {
			// Birthdays land spec.birthdayOffset days from today, in a birth
			// year old enough to be plausible.
			d := today.AddDate(-30, 0, spec.birthdayOffset)
			birthday = &d
		}
		var about *string
		if spec.about != "" {
			about = &spec.about
		}

		var exists bool
		err := pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM contacts WHERE owner_id = $1 AND email = $2
			)`,
			userID, spec.email,
		).Scan(&exists)
		if err != nil {
			log.Fatalf("check contact %s: %v", spec.email, err)
		}
		if exists {
			skipped++
			continue
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO contacts (owner_id, name, email, phone, birthday, about)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			userID, spec.name, spec.email, spec.phone, birthday, about,
		)
		if err != nil {
			log.Fatalf("insert contact %s: %v", spec.email, err)
		}
		inserted++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:             %s / %s  (verified)\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:          %s\n", userID)
	fmt.Printf("  Contacts created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println("    # → {\"access_token\":\"eyJ...\",\"refresh_token\":\"eyJ...\",\"token_type\":\"bearer\"}")
	fmt.Println()
	fmt.Println("  Step 2 — list contacts:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/contacts -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3 — run the digest worker once to see the birthday email:")
	fmt.Println()
	fmt.Println("    go run ./cmd/digest")
	fmt.Println("    # Olena, Petro, and Iryna fall inside the 7-day window")
	fmt.Println()
	fmt.Println("  What to expect:")
	fmt.Println("    GET  /contacts/:id      →  readable for any verified caller")
	fmt.Println("    PUT  /contacts/:id      →  404 unless you own the contact")
	fmt.Println("    GET  /auth/refresh_token with the refresh token  →  a fresh pair")
}

// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the admin guard (admin@campus.dev) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"campus-access-control/backend/internal/config"
	"campus-access-control/backend/internal/db"
	guarddomain "campus-access-control/backend/internal/guard/domain"
	guardrepo "campus-access-control/backend/internal/guard/repository"
	"campus-access-control/backend/internal/security"
)

const (
	adminEmail   = "admin@campus.dev"
	guardEmail   = "guard@campus.dev"
	devPassword  = "Checkpoint#2024"
	adminGuardID = "dev-guard-admin"
	devGuardID   = "dev-guard-001"
)

type refRow struct {
	query string
	args  []any
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	guards := guardrepo.NewPostgresRepository(conn)
	ctx := context.Background()

	existing, err := guards.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (admin@campus.dev exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	if err := guards.Create(ctx, &guarddomain.Guard{
		ID:           adminGuardID,
		Name:         "Dev Admin",
		Email:        adminEmail,
		PasswordHash: passwordHash,
		IsAdmin:      true,
		Active:       true,
		CreatedAt:    now,
	}); err != nil {
		log.Fatalf("create admin guard: %v", err)
	}

	if err := guards.Create(ctx, &guarddomain.Guard{
		ID:           devGuardID,
		Name:         "Dev Guard",
		Email:        guardEmail,
		PasswordHash: passwordHash,
		IsAdmin:      false,
		Active:       true,
		CreatedAt:    now,
	}); err != nil {
		log.Fatalf("create dev guard: %v", err)
	}

	// Reference directory rows. The directory repository is read-only, so the
	// seeder writes these tables directly.
	rows := []refRow{
		{`INSERT INTO faculties (code, name) VALUES ($1, $2)`, []any{"FIIS", "Industrial and Systems Engineering"}},
		{`INSERT INTO faculties (code, name) VALUES ($1, $2)`, []any{"FC", "Sciences"}},
		{`INSERT INTO schools (code, name, faculty_code) VALUES ($1, $2, $3)`, []any{"SIS", "Systems Engineering", "FIIS"}},
		{`INSERT INTO schools (code, name, faculty_code) VALUES ($1, $2, $3)`, []any{"IND", "Industrial Engineering", "FIIS"}},
		{`INSERT INTO schools (code, name, faculty_code) VALUES ($1, $2, $3)`, []any{"FIS", "Physics", "FC"}},
		{`INSERT INTO students (id, name, enrolled, faculty_code, school_code) VALUES ($1, $2, $3, $4, $5)`,
			[]any{"20240001A", "Ana Quispe", true, "FIIS", "SIS"}},
		{`INSERT INTO students (id, name, enrolled, faculty_code, school_code) VALUES ($1, $2, $3, $4, $5)`,
			[]any{"20240002B", "Luis Huaman", true, "FIIS", "IND"}},
		{`INSERT INTO students (id, name, enrolled, faculty_code, school_code) VALUES ($1, $2, $3, $4, $5)`,
			[]any{"20190033C", "Rosa Mamani", false, "FC", "FIS"}},
		{`INSERT INTO visitors (id, name) VALUES ($1, $2)`, []any{"70450011", "Carlos Vega"}},
		{`INSERT INTO visitors (id, name) VALUES ($1, $2)`, []any{"44218790", "Maria Torres"}},
	}
	for _, r := range rows {
		if _, err := conn.ExecContext(ctx, r.query, r.args...); err != nil {
			log.Fatalf("seed reference data: %v", err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Admin login: %s / %s\n", adminEmail, devPassword)
	fmt.Printf("Guard login: %s / %s\n", guardEmail, devPassword)
}

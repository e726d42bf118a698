package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/promanhq/proman/config"
	"github.com/promanhq/proman/pkg/helpers"
)

// Seeds a verified admin account and a couple of sample tasks so a fresh
// install has something to look at.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@proman.local"
	password := "admin123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password, title, role, is_admin, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5, true, true, true)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, "Admin", email, hash, "Administrator", "admin").Scan(&adminID)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", adminID, email, password)

	members := []struct{ name, email, title, role string }{
		{"Jane Cooper", "jane@proman.local", "Product Designer", "designer"},
		{"Cody Fisher", "cody@proman.local", "Backend Engineer", "developer"},
	}
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		var id string
		err = db.QueryRow(`
			INSERT INTO users (name, email, password, title, role, is_admin, is_active, is_verified)
			VALUES ($1, $2, $3, $4, $5, false, true, true)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, m.name, m.email, hash, m.title, m.role).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed member %s: %v", m.email, err)
		}
		memberIDs = append(memberIDs, id)
		fmt.Printf("seeded member: id=%s email=%s\n", id, m.email)
	}

	tasks := []struct{ title, stage, priority string }{
		{"Design the landing page", "todo", "high"},
		{"Set up CI pipeline", "in progress", "medium"},
	}
	for i, t := range tasks {
		var taskID string
		err = db.QueryRow(`
			INSERT INTO tasks (title, stage, priority, date)
			VALUES ($1, $2, $3, now())
			RETURNING id
		`, t.title, t.stage, t.priority).Scan(&taskID)
		if err != nil {
			log.Fatalf("failed to seed task: %v", err)
		}
		assignee := memberIDs[i%len(memberIDs)]
		if _, err := db.Exec(`
			INSERT INTO task_team (task_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, taskID, assignee); err != nil {
			log.Fatalf("failed to assign task team: %v", err)
		}
		if _, err := db.Exec(`
			INSERT INTO activities (task_id, type, activity, by_user)
			VALUES ($1, 'assigned', $2, $3)
		`, taskID, "Task assigned during seeding", adminID); err != nil {
			log.Fatalf("failed to seed activity: %v", err)
		}
		fmt.Printf("seeded task: id=%s title=%q\n", taskID, t.title)
	}
}

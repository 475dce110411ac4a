package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"notifications", "payment_requests", "event_members", "events", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "123456"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			Name  string
			Email string
			Role  string
		}{
			{"Ana Silva", "ana@payflow.dev", "requester"},
			{"Bruno Costa", "bruno@payflow.dev", "requester"},
			{"Maria Souza", "maria@payflow.dev", "manager"},
			{"Carlos Dias", "carlos@payflow.dev", "finance"},
		}

		userIDs := make(map[string]int64, len(users))
		for _, u := range users {
			var id int64
			row := db.Raw("SELECT id FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&id); err == nil {
				fmt.Printf("user %s already exists\n", u.Email)
				userIDs[u.Email] = id
				continue
			}

			err := db.Exec(
				"INSERT INTO users (name, email, role, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				u.Name, u.Email, u.Role, string(hash)).Error
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			row = db.Raw("SELECT id FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&id); err != nil {
				log.Fatalf("failed to read back user %s: %v", u.Email, err)
			}
			userIDs[u.Email] = id
			fmt.Printf("Seeded user %s (%s)\n", u.Email, u.Role)
		}

		events := []struct {
			Name          string
			Type          string
			BudgetCents   int64
			Subcategories string
			Members       []string
		}{
			{"Tech Conference 2026", "event", 5000000, "catering,venue,travel", []string{"ana@payflow.dev", "bruno@payflow.dev"}},
			{"Acme Holding", "company", 0, "", []string{"ana@payflow.dev"}},
		}

		for _, e := range events {
			var id int64
			row := db.Raw("SELECT id FROM events WHERE name = ?", e.Name).Row()
			if err := row.Scan(&id); err == nil {
				fmt.Printf("event %s already exists\n", e.Name)
				continue
			}

			err := db.Transaction(func(tx *gorm.DB) error {
				var budget interface{}
				if e.BudgetCents > 0 {
					budget = e.BudgetCents
				}
				if err := tx.Exec(
					"INSERT INTO events (name, status, type, budget_cents, subcategories, created_at, updated_at) VALUES (?, 'active', ?, ?, ?, now(), now())",
					e.Name, e.Type, budget, e.Subcategories).Error; err != nil {
					return err
				}
				row := tx.Raw("SELECT id FROM events WHERE name = ?", e.Name).Row()
				if err := row.Scan(&id); err != nil {
					return err
				}
				for _, email := range e.Members {
					if err := tx.Exec(
						"INSERT INTO event_members (event_id, user_id) VALUES (?, ?)",
						id, userIDs[email]).Error; err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				log.Fatalf("failed to insert event %s: %v", e.Name, err)
			}
			fmt.Printf("Seeded event %s\n", e.Name)
		}

		fmt.Println("Seeding complete. All users log in with password:", password)
	},
}

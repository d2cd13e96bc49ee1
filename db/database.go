package db

import (
	"database/sql"
	"fmt"
	"log"

	"backline/config"
	"backline/core/auth"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// SeedAdminUser makes sure the configured admin account exists. The password
// is only set on first creation; later password changes go through the store
// directly.
func SeedAdminUser(cfg *config.Config) error {
	if cfg.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin seed.")
		return nil
	}

	var existingID int64
	err := DB.QueryRow("SELECT id FROM users WHERE username = ?", cfg.AdminUser).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for existing admin user: %w", err)
	}
	if err == nil {
		log.Printf("Admin user %q already exists with ID %d. Skipping creation.", cfg.AdminUser, existingID)
		return nil
	}

	hashed, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	res, err := DB.Exec("INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, NOW(), NOW())",
		cfg.AdminUser, cfg.AdminEmail, hashed)
	if err != nil {
		return fmt.Errorf("failed to insert admin user: %w", err)
	}
	id, _ := res.LastInsertId()
	log.Printf("Admin user %q created with ID %d.", cfg.AdminUser, id)
	return nil
}

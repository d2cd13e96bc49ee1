package repository

import (
	"context"
	"database/sql"
	"fmt"

	"backline/db"
)

// SiteConfigRepository defines the interface for site configuration storage.
type SiteConfigRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	UpsertMany(ctx context.Context, values map[string]string) error
}

// mysqlSiteConfigRepository implements SiteConfigRepository for MySQL.
type mysqlSiteConfigRepository struct {
	DB *sql.DB
}

// NewMySQLSiteConfigRepository creates a new instance of mysqlSiteConfigRepository.
func NewMySQLSiteConfigRepository() SiteConfigRepository {
	return &mysqlSiteConfigRepository{DB: db.DB}
}

// GetAll retrieves the whole configuration map.
func (r *mysqlSiteConfigRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT config_key, config_value FROM site_config`)
	if err != nil {
		return nil, fmt.Errorf("failed to query site config: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan site config entry: %w", err)
		}
		values[key] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAll: %w", err)
	}
	return values, nil
}

// UpsertMany writes the given key/value pairs in one transaction, last write
// wins per key.
func (r *mysqlSiteConfigRepository) UpsertMany(ctx context.Context, values map[string]string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for UpsertMany: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO site_config (config_key, config_value) VALUES (?, ?) ON DUPLICATE KEY UPDATE config_value = VALUES(config_value)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for UpsertMany: %w", err)
	}
	defer stmt.Close()

	for key, value := range values {
		if _, err := stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("failed to upsert site config key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit UpsertMany: %w", err)
	}
	return nil
}

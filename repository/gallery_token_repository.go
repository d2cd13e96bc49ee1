package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backline/db"
	"backline/model"
)

// GalleryTokenRepository persists OAuth refresh tokens for the external
// image host, one row per provider.
type GalleryTokenRepository interface {
	GetToken(ctx context.Context, provider string) (*model.GalleryToken, error)
	SaveToken(ctx context.Context, token *model.GalleryToken) error
}

// mysqlGalleryTokenRepository implements GalleryTokenRepository for MySQL.
type mysqlGalleryTokenRepository struct {
	DB *sql.DB
}

// NewMySQLGalleryTokenRepository creates a new instance of mysqlGalleryTokenRepository.
func NewMySQLGalleryTokenRepository() GalleryTokenRepository {
	return &mysqlGalleryTokenRepository{DB: db.DB}
}

// GetToken retrieves the refresh token row for a provider.
func (r *mysqlGalleryTokenRepository) GetToken(ctx context.Context, provider string) (*model.GalleryToken, error) {
	query := `SELECT provider, refresh_token, updated_at FROM gallery_tokens WHERE provider = ?`
	t := &model.GalleryToken{}
	err := r.DB.QueryRowContext(ctx, query, provider).Scan(&t.Provider, &t.RefreshToken, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan gallery token for provider %s: %w", provider, err)
	}
	return t, nil
}

// SaveToken upserts the refresh token row for a provider.
func (r *mysqlGalleryTokenRepository) SaveToken(ctx context.Context, token *model.GalleryToken) error {
	query := `INSERT INTO gallery_tokens (provider, refresh_token, updated_at) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE refresh_token = VALUES(refresh_token), updated_at = VALUES(updated_at)`
	_, err := r.DB.ExecContext(ctx, query, token.Provider, token.RefreshToken, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert gallery token for provider %s: %w", token.Provider, err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backline/db"
	"backline/model"
)

// ArtistRepository defines the interface for artist data operations.
type ArtistRepository interface {
	CreateArtist(ctx context.Context, a *model.Artist) (int64, error)
	GetArtistByID(ctx context.Context, id int64) (*model.Artist, error)
	GetArtistBySlug(ctx context.Context, slug string) (*model.Artist, error)
	GetAllArtists(ctx context.Context, activeOnly bool) ([]*model.Artist, error)
	UpdateArtist(ctx context.Context, a *model.Artist) error
	DeleteArtist(ctx context.Context, id int64) error
	ReorderArtists(ctx context.Context, from, to int) error
}

// mysqlArtistRepository implements ArtistRepository for MySQL.
type mysqlArtistRepository struct {
	DB *sql.DB
}

// NewMySQLArtistRepository creates a new instance of mysqlArtistRepository.
func NewMySQLArtistRepository() ArtistRepository {
	return &mysqlArtistRepository{DB: db.DB}
}

const artistColumns = `id, nickname, normalized_nickname, first_name, last_name, bio, instagram_url, soundcloud_url, role, is_active, display_order, avatar_file, created_at, updated_at`

func scanArtist(row interface{ Scan(...interface{}) error }) (*model.Artist, error) {
	a := &model.Artist{}
	err := row.Scan(&a.ID, &a.Nickname, &a.NormalizedNickname, &a.FirstName, &a.LastName, &a.Bio,
		&a.InstagramURL, &a.SoundcloudURL, &a.Role, &a.IsActive, &a.DisplayOrder, &a.AvatarFile,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateArtist adds a new artist at the end of the display order. MySQL does
// not allow selecting from the insert target inside VALUES, so the next
// position is read with its own query in the same transaction.
func (r *mysqlArtistRepository) CreateArtist(ctx context.Context, a *model.Artist) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for CreateArtist: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(display_order) + 1, 0) FROM artists`).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to read next display order: %w", err)
	}

	query := `INSERT INTO artists (nickname, normalized_nickname, first_name, last_name, bio, instagram_url, soundcloud_url, role, is_active, display_order, avatar_file, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := tx.ExecContext(ctx, query, a.Nickname, a.NormalizedNickname, a.FirstName, a.LastName, a.Bio,
		a.InstagramURL, a.SoundcloudURL, a.Role, a.IsActive, next, a.AvatarFile, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateArtist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateArtist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit CreateArtist: %w", err)
	}
	return id, nil
}

// GetArtistByID retrieves an artist by its ID.
func (r *mysqlArtistRepository) GetArtistByID(ctx context.Context, id int64) (*model.Artist, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = ?`, id)
	a, err := scanArtist(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan artist by ID %d: %w", id, err)
	}
	return a, nil
}

// GetArtistBySlug retrieves an artist by its normalized nickname.
func (r *mysqlArtistRepository) GetArtistBySlug(ctx context.Context, slug string) (*model.Artist, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists WHERE normalized_nickname = ?`, slug)
	a, err := scanArtist(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan artist by slug %s: %w", slug, err)
	}
	return a, nil
}

// GetAllArtists retrieves artists ordered by display order.
func (r *mysqlArtistRepository) GetAllArtists(ctx context.Context, activeOnly bool) ([]*model.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY display_order ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	artists := make([]*model.Artist, 0)
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist in GetAllArtists: %w", err)
		}
		artists = append(artists, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllArtists: %w", err)
	}
	return artists, nil
}

// UpdateArtist rewrites an artist row. DisplayOrder is not touched here;
// ordering changes only go through ReorderArtists.
func (r *mysqlArtistRepository) UpdateArtist(ctx context.Context, a *model.Artist) error {
	query := `UPDATE artists SET nickname = ?, normalized_nickname = ?, first_name = ?, last_name = ?, bio = ?, instagram_url = ?, soundcloud_url = ?, role = ?, is_active = ?, avatar_file = ?, updated_at = ? WHERE id = ?`
	stmt, err := r.DB.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for UpdateArtist: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, a.Nickname, a.NormalizedNickname, a.FirstName, a.LastName, a.Bio,
		a.InstagramURL, a.SoundcloudURL, a.Role, a.IsActive, a.AvatarFile, time.Now(), a.ID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateArtist for ID %d: %w", a.ID, err)
	}
	return nil
}

// DeleteArtist removes an artist row.
func (r *mysqlArtistRepository) DeleteArtist(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteArtist for ID %d: %w", id, err)
	}
	return nil
}

// MoveIndex returns ids with the element at index from moved to index to.
// Out-of-range indices leave the slice untouched.
func MoveIndex(ids []int64, from, to int) []int64 {
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) || from == to {
		return ids
	}
	out := make([]int64, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	out = append(out[:to], append([]int64{ids[from]}, out[to:]...)...)
	return out
}

// ReorderArtists moves the artist at display position from to position to and
// rewrites display_order contiguously from zero, all in one transaction so a
// concurrent read never sees a half-applied ordering.
func (r *mysqlArtistRepository) ReorderArtists(ctx context.Context, from, to int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for ReorderArtists: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM artists ORDER BY display_order ASC, id ASC FOR UPDATE`)
	if err != nil {
		return fmt.Errorf("failed to query artist order: %w", err)
	}
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan artist ID in ReorderArtists: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error during rows iteration in ReorderArtists: %w", err)
	}
	rows.Close()

	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return fmt.Errorf("reorder indices %d -> %d out of range for %d artists", from, to, len(ids))
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE artists SET display_order = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for ReorderArtists: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for pos, id := range MoveIndex(ids, from, to) {
		if _, err := stmt.ExecContext(ctx, pos, now, id); err != nil {
			return fmt.Errorf("failed to rewrite display order for artist %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ReorderArtists: %w", err)
	}
	return nil
}

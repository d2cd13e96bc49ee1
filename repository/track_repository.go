package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backline/db"
	"backline/model"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(ctx context.Context, t *model.Track) (int64, error)
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
	GetAllTracks(ctx context.Context) ([]*model.Track, error)
	GetTracksByArtist(ctx context.Context, artistID int64) ([]*model.Track, error)
	GetFeaturedTrack(ctx context.Context) (*model.Track, error)
	UpdateTrack(ctx context.Context, t *model.Track) error
	DeleteTrack(ctx context.Context, id int64) error
	SetFeatured(ctx context.Context, id int64) error
	CountTracksByArtist(ctx context.Context, artistID int64) (int64, error)
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	DB *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository() TrackRepository {
	return &mysqlTrackRepository{DB: db.DB}
}

const trackColumns = `t.id, t.artist_id, t.title, t.title_slug, t.audio_file, t.artwork_file, t.is_featured, t.created_at, t.updated_at, a.nickname`

func scanTrack(row interface{ Scan(...interface{}) error }) (*model.Track, error) {
	t := &model.Track{}
	err := row.Scan(&t.ID, &t.ArtistID, &t.Title, &t.TitleSlug, &t.AudioFile, &t.ArtworkFile,
		&t.IsFeatured, &t.CreatedAt, &t.UpdatedAt, &t.ArtistNickname)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTrack adds a new track to the database.
func (r *mysqlTrackRepository) CreateTrack(ctx context.Context, t *model.Track) (int64, error) {
	query := `INSERT INTO tracks (artist_id, title, title_slug, audio_file, artwork_file, is_featured, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateTrack: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.ExecContext(ctx, t.ArtistID, t.Title, t.TitleSlug, t.AudioFile, t.ArtworkFile, t.IsFeatured, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	return id, nil
}

// GetTrackByID retrieves a track by its ID.
func (r *mysqlTrackRepository) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t JOIN artists a ON a.id = t.artist_id WHERE t.id = ?`
	t, err := scanTrack(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return t, nil
}

// GetAllTracks retrieves all tracks, newest first.
func (r *mysqlTrackRepository) GetAllTracks(ctx context.Context) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t JOIN artists a ON a.id = t.artist_id ORDER BY t.created_at DESC`
	return r.queryTracks(ctx, query)
}

// GetTracksByArtist retrieves an artist's tracks, newest first.
func (r *mysqlTrackRepository) GetTracksByArtist(ctx context.Context, artistID int64) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t JOIN artists a ON a.id = t.artist_id WHERE t.artist_id = ? ORDER BY t.created_at DESC`
	return r.queryTracks(ctx, query, artistID)
}

func (r *mysqlTrackRepository) queryTracks(ctx context.Context, query string, args ...interface{}) ([]*model.Track, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return tracks, nil
}

// GetFeaturedTrack retrieves the single featured track, or nil when none is
// set.
func (r *mysqlTrackRepository) GetFeaturedTrack(ctx context.Context) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t JOIN artists a ON a.id = t.artist_id WHERE t.is_featured = TRUE LIMIT 1`
	t, err := scanTrack(r.DB.QueryRowContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan featured track: %w", err)
	}
	return t, nil
}

// UpdateTrack rewrites a track row. The featured flag is not touched here;
// it only changes through SetFeatured.
func (r *mysqlTrackRepository) UpdateTrack(ctx context.Context, t *model.Track) error {
	query := `UPDATE tracks SET artist_id = ?, title = ?, title_slug = ?, audio_file = ?, artwork_file = ?, updated_at = ? WHERE id = ?`
	stmt, err := r.DB.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for UpdateTrack: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, t.ArtistID, t.Title, t.TitleSlug, t.AudioFile, t.ArtworkFile, time.Now(), t.ID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateTrack for ID %d: %w", t.ID, err)
	}
	return nil
}

// DeleteTrack removes a track row.
func (r *mysqlTrackRepository) DeleteTrack(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteTrack for ID %d: %w", id, err)
	}
	return nil
}

// SetFeatured marks one track as featured. The unset of the previous holder
// and the set of the new one run in a single transaction so readers never
// see zero or two featured tracks.
func (r *mysqlTrackRepository) SetFeatured(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for SetFeatured: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE tracks SET is_featured = FALSE WHERE is_featured = TRUE`); err != nil {
		return fmt.Errorf("failed to clear featured flag: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE tracks SET is_featured = TRUE, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set featured flag for track %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for SetFeatured: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("track %d does not exist", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit SetFeatured: %w", err)
	}
	return nil
}

// CountTracksByArtist counts tracks owned by an artist.
func (r *mysqlTrackRepository) CountTracksByArtist(ctx context.Context, artistID int64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks WHERE artist_id = ?`, artistID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracks for artist %d: %w", artistID, err)
	}
	return n, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backline/db"
	"backline/model"
)

// EventRepository defines the interface for event and lineup data operations.
type EventRepository interface {
	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetAllEvents(ctx context.Context, upcomingOnly bool) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	GetLineup(ctx context.Context, eventID int64) ([]model.EventArtist, error)
	ReplaceLineup(ctx context.Context, eventID int64, lineup []model.EventArtist) error
	DeleteLineup(ctx context.Context, eventID int64) error
	CountLineupByArtist(ctx context.Context, artistID int64) (int64, error)
}

// mysqlEventRepository implements EventRepository for MySQL.
type mysqlEventRepository struct {
	DB *sql.DB
}

// NewMySQLEventRepository creates a new instance of mysqlEventRepository.
func NewMySQLEventRepository() EventRepository {
	return &mysqlEventRepository{DB: db.DB}
}

const eventColumns = `id, title, title_slug, date, location, description, image_file, created_at, updated_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*model.Event, error) {
	e := &model.Event{}
	err := row.Scan(&e.ID, &e.Title, &e.TitleSlug, &e.Date, &e.Location, &e.Description,
		&e.ImageFile, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateEvent adds a new event to the database.
func (r *mysqlEventRepository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	query := `INSERT INTO events (title, title_slug, date, location, description, image_file, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateEvent: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.ExecContext(ctx, e.Title, e.TitleSlug, e.Date, e.Location, e.Description, e.ImageFile, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateEvent: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateEvent: %w", err)
	}
	return id, nil
}

// GetEventByID retrieves an event by its ID, without lineup.
func (r *mysqlEventRepository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan event by ID %d: %w", id, err)
	}
	return e, nil
}

// GetAllEvents retrieves events, newest date first. With upcomingOnly only
// events from today onward are returned, soonest first.
func (r *mysqlEventRepository) GetAllEvents(ctx context.Context, upcomingOnly bool) ([]*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	if upcomingOnly {
		query += ` WHERE date >= CURDATE() ORDER BY date ASC`
	} else {
		query += ` ORDER BY date DESC`
	}

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event in GetAllEvents: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllEvents: %w", err)
	}
	return events, nil
}

// UpdateEvent rewrites an event row.
func (r *mysqlEventRepository) UpdateEvent(ctx context.Context, e *model.Event) error {
	query := `UPDATE events SET title = ?, title_slug = ?, date = ?, location = ?, description = ?, image_file = ?, updated_at = ? WHERE id = ?`
	stmt, err := r.DB.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for UpdateEvent: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, e.Title, e.TitleSlug, e.Date, e.Location, e.Description, e.ImageFile, time.Now(), e.ID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateEvent for ID %d: %w", e.ID, err)
	}
	return nil
}

// DeleteEvent removes an event row.
func (r *mysqlEventRepository) DeleteEvent(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteEvent for ID %d: %w", id, err)
	}
	return nil
}

// GetLineup retrieves an event's lineup in performance order, with the
// artist nickname joined in for display.
func (r *mysqlEventRepository) GetLineup(ctx context.Context, eventID int64) ([]model.EventArtist, error) {
	query := `SELECT ea.id, ea.event_id, ea.artist_id, ea.position, ea.is_headliner, ea.starts_at, ea.ends_at, a.nickname
	           FROM event_artists ea
	           JOIN artists a ON a.id = ea.artist_id
	           WHERE ea.event_id = ?
	           ORDER BY ea.position ASC`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lineup for event %d: %w", eventID, err)
	}
	defer rows.Close()

	lineup := make([]model.EventArtist, 0)
	for rows.Next() {
		var slot model.EventArtist
		err := rows.Scan(&slot.ID, &slot.EventID, &slot.ArtistID, &slot.Position, &slot.IsHeadliner,
			&slot.StartsAt, &slot.EndsAt, &slot.ArtistNickname)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lineup slot in GetLineup: %w", err)
		}
		lineup = append(lineup, slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetLineup: %w", err)
	}
	return lineup, nil
}

// ReplaceLineup swaps an event's lineup for the given slots in one
// transaction. Positions are rewritten contiguously from zero in slice
// order; at most one slot may carry the headliner flag.
func (r *mysqlEventRepository) ReplaceLineup(ctx context.Context, eventID int64, lineup []model.EventArtist) error {
	headliners := 0
	for _, slot := range lineup {
		if slot.IsHeadliner {
			headliners++
		}
	}
	if headliners > 1 {
		return fmt.Errorf("lineup for event %d names %d headliners, at most one allowed", eventID, headliners)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for ReplaceLineup: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_artists WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to clear lineup for event %d: %w", eventID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO event_artists (event_id, artist_id, position, is_headliner, starts_at, ends_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for ReplaceLineup: %w", err)
	}
	defer stmt.Close()

	for pos, slot := range lineup {
		if _, err := stmt.ExecContext(ctx, eventID, slot.ArtistID, pos, slot.IsHeadliner, slot.StartsAt, slot.EndsAt); err != nil {
			return fmt.Errorf("failed to insert lineup slot for artist %d: %w", slot.ArtistID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ReplaceLineup: %w", err)
	}
	return nil
}

// DeleteLineup removes every lineup row for an event.
func (r *mysqlEventRepository) DeleteLineup(ctx context.Context, eventID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM event_artists WHERE event_id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteLineup for event %d: %w", eventID, err)
	}
	return nil
}

// CountLineupByArtist counts lineup slots referencing an artist.
func (r *mysqlEventRepository) CountLineupByArtist(ctx context.Context, artistID int64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_artists WHERE artist_id = ?`, artistID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count lineup slots for artist %d: %w", artistID, err)
	}
	return n, nil
}

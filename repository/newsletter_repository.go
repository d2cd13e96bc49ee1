package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backline/db"
	"backline/model"
)

// NewsletterRepository defines the interface for subscriber data operations.
type NewsletterRepository interface {
	CreateSubscriber(ctx context.Context, s *model.NewsletterSubscriber) (int64, error)
	GetSubscriberByEmail(ctx context.Context, email string) (*model.NewsletterSubscriber, error)
	GetSubscriberByToken(ctx context.Context, token string) (*model.NewsletterSubscriber, error)
	GetSubscribers(ctx context.Context, status string) ([]model.NewsletterSubscriber, error)
	UpdateSubscriberStatus(ctx context.Context, id int64, status string) error
}

// mysqlNewsletterRepository implements NewsletterRepository for MySQL.
type mysqlNewsletterRepository struct {
	DB *sql.DB
}

// NewMySQLNewsletterRepository creates a new instance of mysqlNewsletterRepository.
func NewMySQLNewsletterRepository() NewsletterRepository {
	return &mysqlNewsletterRepository{DB: db.DB}
}

const subscriberColumns = `id, email, status, unsubscribe_token, created_at`

func scanSubscriber(row interface{ Scan(...interface{}) error }) (*model.NewsletterSubscriber, error) {
	s := &model.NewsletterSubscriber{}
	err := row.Scan(&s.ID, &s.Email, &s.Status, &s.UnsubscribeToken, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSubscriber adds a signup. The unique index on email rejects
// duplicates; callers check for an existing row first and treat a duplicate
// key error as already-subscribed.
func (r *mysqlNewsletterRepository) CreateSubscriber(ctx context.Context, s *model.NewsletterSubscriber) (int64, error) {
	query := `INSERT INTO newsletter_subscribers (email, status, unsubscribe_token, created_at) VALUES (?, ?, ?, ?)`
	stmt, err := r.DB.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateSubscriber: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, s.Email, s.Status, s.UnsubscribeToken, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateSubscriber: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateSubscriber: %w", err)
	}
	return id, nil
}

// GetSubscriberByEmail retrieves a subscriber by email.
func (r *mysqlNewsletterRepository) GetSubscriberByEmail(ctx context.Context, email string) (*model.NewsletterSubscriber, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE email = ?`, email)
	s, err := scanSubscriber(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan subscriber by email: %w", err)
	}
	return s, nil
}

// GetSubscriberByToken retrieves a subscriber by unsubscribe token.
func (r *mysqlNewsletterRepository) GetSubscriberByToken(ctx context.Context, token string) (*model.NewsletterSubscriber, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE unsubscribe_token = ?`, token)
	s, err := scanSubscriber(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan subscriber by token: %w", err)
	}
	return s, nil
}

// GetSubscribers retrieves subscribers, optionally filtered by status.
func (r *mysqlNewsletterRepository) GetSubscribers(ctx context.Context, status string) ([]model.NewsletterSubscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers`
	args := make([]interface{}, 0, 1)
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	subs := make([]model.NewsletterSubscriber, 0)
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscriber in GetSubscribers: %w", err)
		}
		subs = append(subs, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetSubscribers: %w", err)
	}
	return subs, nil
}

// UpdateSubscriberStatus flips a subscriber's status.
func (r *mysqlNewsletterRepository) UpdateSubscriberStatus(ctx context.Context, id int64, status string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE newsletter_subscribers SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateSubscriberStatus for ID %d: %w", id, err)
	}
	return nil
}

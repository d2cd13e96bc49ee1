package model

import "time"

// Subscriber statuses.
const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
)

// NewsletterSubscriber is a newsletter signup.
type NewsletterSubscriber struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Email            string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Status           string    `json:"status" gorm:"size:32;not null;default:active"`
	UnsubscribeToken string    `json:"-" gorm:"size:64;not null;index"`
	CreatedAt        time.Time `json:"createdAt"`
}

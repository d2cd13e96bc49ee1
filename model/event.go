package model

import "time"

// Event represents a show on the brand calendar.
//
// TitleSlug is derived from Title and keys both the event's asset directory
// and its lookup folder on the external gallery host.
type Event struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	TitleSlug   string    `json:"titleSlug" gorm:"size:255;not null;index"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location,omitempty" gorm:"size:255"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	ImageFile   string    `json:"imageFile,omitempty" gorm:"size:512"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Lineup []EventArtist `json:"lineup,omitempty" gorm:"-"`
}

// EventArtist is one slot in an event lineup. Position defines performance
// order; at most one slot per event carries IsHeadliner.
type EventArtist struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID     int64      `json:"eventId" gorm:"not null;index"`
	ArtistID    int64      `json:"artistId" gorm:"not null;index"`
	Position    int        `json:"position" gorm:"not null;default:0"`
	IsHeadliner bool       `json:"isHeadliner" gorm:"not null;default:false"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`

	// Display fields joined in on reads, not persisted here.
	ArtistNickname string `json:"artistNickname,omitempty" gorm:"-"`
}

// TableName keeps the join table under its historical name.
func (EventArtist) TableName() string { return "event_artists" }

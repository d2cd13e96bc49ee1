package model

import "time"

// Track represents a published track belonging to exactly one artist.
//
// AudioFile and ArtworkFile are object names inside the owning artist's
// storage directory, both derived from TitleSlug. At most one track in the
// whole system carries IsFeatured.
type Track struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ArtistID    int64     `json:"artistId" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	TitleSlug   string    `json:"titleSlug" gorm:"size:255;not null"`
	AudioFile   string    `json:"audioFile" gorm:"size:512;not null"`
	ArtworkFile string    `json:"artworkFile,omitempty" gorm:"size:512"`
	IsFeatured  bool      `json:"isFeatured" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Joined in on reads.
	ArtistNickname string `json:"artistNickname,omitempty" gorm:"-"`
}

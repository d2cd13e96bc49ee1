package model

import "time"

// GalleryImage is one image entry returned by the external gallery host.
type GalleryImage struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// GalleryPage is one slice of an event's gallery listing.
type GalleryPage struct {
	Images  []GalleryImage `json:"images"`
	HasMore bool           `json:"hasMore"`
}

// GalleryToken holds the OAuth refresh token for the external image host.
type GalleryToken struct {
	Provider     string    `json:"provider" gorm:"primaryKey;size:64"`
	RefreshToken string    `json:"-" gorm:"size:512;not null"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName matches the persisted token record name.
func (GalleryToken) TableName() string { return "gallery_tokens" }

package model

import "time"

// Artist represents a performer on the brand roster.
//
// NormalizedNickname is derived from Nickname on every write and doubles as
// the artist's storage directory key; it is never editable directly.
type Artist struct {
	ID                 int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Nickname           string    `json:"nickname" gorm:"size:255;not null"`
	NormalizedNickname string    `json:"normalizedNickname" gorm:"size:255;not null;uniqueIndex"`
	FirstName          string    `json:"firstName,omitempty" gorm:"size:255"`
	LastName           string    `json:"lastName,omitempty" gorm:"size:255"`
	Bio                string    `json:"bio,omitempty" gorm:"type:text"`
	InstagramURL       string    `json:"instagramUrl,omitempty" gorm:"size:512"`
	SoundcloudURL      string    `json:"soundcloudUrl,omitempty" gorm:"size:512"`
	Role               string    `json:"role,omitempty" gorm:"size:100"`
	IsActive           bool      `json:"isActive" gorm:"not null;default:true"`
	DisplayOrder       int       `json:"displayOrder" gorm:"not null;default:0"`
	AvatarFile         string    `json:"avatarFile,omitempty" gorm:"size:512"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

package models

import "time"

// Profile is one-to-one with User.
type Profile struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index" json:"-"`
	Active    bool       `gorm:"default:true;not null"`
	UserID    uint       `gorm:"uniqueIndex;not null"`
	Name      string     `gorm:"size:255;not null"`
	Email     string     `gorm:"size:255"`
	// PreferredLanguage is the catalog scans resolve into when the request
	// names none. Empty means the server default.
	PreferredLanguage string `gorm:"size:32"`
}

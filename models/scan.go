package models

import "time"

// Scan is one identification attempt. Failed attempts are kept with Method
// "none" and a reason so they can be rescanned.
type Scan struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint   `gorm:"index;not null"`
	FileName    string `gorm:"size:255;not null"`
	StorePath   string `gorm:"column:store_path;size:512"`
	ContentType string `gorm:"size:128"`
	// PHash is the capture's 64-bit perception hash in hex.
	PHash        string  `gorm:"column:phash;size:16;index"`
	Method       string  `gorm:"size:16;not null;index"`
	Identifier   string  `gorm:"size:32;index"`
	// TextIdentifier is what the card text read as, even when the artwork
	// match decided the result.
	TextIdentifier string  `gorm:"column:text_identifier;size:32"`
	Language       string  `gorm:"size:32"`
	MatchedEntry   string  `gorm:"size:64"`
	Similarity     float64 `gorm:"default:0"`
	CardFile       string  `gorm:"size:255"`
	FailedReason   string  `gorm:"size:255"`
}

// Resolved reports whether the scan ended on a catalog card.
func (s Scan) Resolved() bool {
	return s.Method != "" && s.Method != "none" && s.CardFile != ""
}

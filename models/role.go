package models

import "time"

// Role is a named permission level. "administrator" sees every user's scans.
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}

const (
	RoleAdministrator = "administrator"
	RoleUser          = "user"
)

// DefaultRoles are seeded on startup.
var DefaultRoles = []Role{
	{Name: RoleAdministrator, Description: "full access"},
	{Name: RoleUser, Description: "regular user"},
}

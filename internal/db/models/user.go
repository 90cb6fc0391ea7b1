// Package models holds the gorm models of markstash.
package models

import (
	"time"
)

// User represents a local user account.
// Users are created on their first OpenID Connect login and are bound to the
// identity provider through ExternalID (the sub claim).
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the user account may log in.
	Active bool
	// Username is the unique display handle.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's email address as reported by the provider.
	Email string `gorm:"size:255"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:100"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:100"`
	// ExternalID is the provider subject identifier.
	ExternalID string `gorm:"uniqueIndex;size:255;not null"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

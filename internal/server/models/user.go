// Package models defines server-side domain types.
package models

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

package entity

import (
	"time"
)

// Account is the aggregate root for the account domain.
// PasswordHash is a bcrypt hash and must never be serialized outward.
type Account struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	IsAdmin         bool
	IsEmailVerified bool
	Branch          string
	PassingYear     string
	Designation     string
	About           string
	GitHub          string
	Leetcode        string
	LinkedIn        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

package entity

import "time"

// User is an authenticated account owner
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

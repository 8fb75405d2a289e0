package users

import "time"

// User mirrors an identity-provider subject locally so reports have a stable owner id.
type User struct {
	ID        string
	Email     string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

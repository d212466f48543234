package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInput is the profile-update payload.
type UserInput struct {
	Nickname string `json:"nickname"`
}

package models

import "time"

type Transaction struct {
	ID         int64           `json:"id"`
	Price      int64           `json:"price"`
	Title      string          `json:"title"`
	Type       TransactionType `json:"type"`
	Category   *Category       `json:"category,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	SplitCount int             `json:"splitCount"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// TransactionInput is the creation/update payload sent to the backend.
// StartedAt is carried as an ISO-8601 string so an omitted value stays off
// the wire entirely.
type TransactionInput struct {
	Price      int64           `json:"price"`
	Title      string          `json:"title"`
	Type       TransactionType `json:"type,omitempty"`
	Category   *Category       `json:"category,omitempty"`
	StartedAt  string          `json:"startedAt,omitempty"`
	SplitCount int             `json:"splitCount"`
}

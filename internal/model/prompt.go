package model

import (
	"time"
)

type Prompt struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Label     string    `db:"label" json:"label"`
	Value     string    `db:"value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PromptTemplate is a default prompt before it is copied to a user.
type PromptTemplate struct {
	Label string
	Value string
}

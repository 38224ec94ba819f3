package model

import (
	"time"
)

// DefaultClassificationPrompt is sent to the vision model when the client
// does not choose a prompt.
const DefaultClassificationPrompt = "What is in this image? Classify as recyclable, compostable, or landfill. And provide proper disposal instructions"

// HistoryLimit caps every history listing.
const HistoryLimit = 50

type Classification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	ImageURL  string    `db:"image_url" json:"imageUrl"`
	Response  string    `db:"response" json:"response"`
	Prompt    string    `db:"prompt" json:"prompt"`
	CreatedAt time.Time `db:"created_at" json:"timestamp"`

	// Computed fields (not in database)
	ResponseHTML string `db:"-" json:"responseHtml,omitempty"`
}

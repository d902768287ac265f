package models

import (
	"time"

	"github.com/google/uuid"
)

// WritingPrompt is a read-only journaling suggestion grouped by category.
// Category is either a mood from the vocabulary or "general".
type WritingPrompt struct {
	ID        uuid.UUID `json:"id"`
	Prompt    string    `json:"prompt"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Chapter groups quiz questions and scopes quiz retake cooldowns.
type Chapter struct {
	ID          uuid.UUID `json:"id"`
	ChapterName string    `json:"chapter_name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

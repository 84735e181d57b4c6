package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is one persisted graded attempt. Results are append-only: a retake
// produces a new row, a stored row is never amended.
type Result struct {
	ID              uuid.UUID         `json:"id"`
	Callsign        string            `json:"callsign"`
	ExamType        ExamKind          `json:"exam_type"`
	ChapterID       *uuid.UUID        `json:"chapter_id,omitempty"`
	ChapterName     *string           `json:"chapter_name,omitempty"`
	Score           int               `json:"score"`
	Passed          bool              `json:"passed"`
	DetailedAnswers map[string]string `json:"detailed_answers"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ResultCandidate is a graded attempt awaiting persistence. The ID is the
// session ID, so a retried insert of the same attempt is a no-op rather than a
// duplicate row. CreatedAt is assigned by the store.
type ResultCandidate struct {
	ID              uuid.UUID         `json:"id"`
	Callsign        string            `json:"callsign"`
	ExamType        ExamKind          `json:"exam_type"`
	ChapterID       *uuid.UUID        `json:"chapter_id,omitempty"`
	Score           int               `json:"score"`
	Passed          bool              `json:"passed"`
	DetailedAnswers map[string]string `json:"detailed_answers"`
}

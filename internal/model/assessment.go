package model

import (
	"github.com/google/uuid"
)

// StartQuizRequest is the payload for starting a chapter quiz session.
type StartQuizRequest struct {
	ChapterID uuid.UUID `json:"chapter_id" binding:"required"`
}

// RecordAnswerRequest is the payload for answering one question. The label is
// normalized (trimmed, case-folded) at grading time, so "A" and " a " are
// equivalent.
type RecordAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer" binding:"required,max=10"`
}

// InstructorLoginRequest is the payload for the instructor monitor gate.
type InstructorLoginRequest struct {
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// SessionView is the trainee-facing representation of a live session.
type SessionView struct {
	SessionID        uuid.UUID            `json:"session_id"`
	Kind             ExamKind             `json:"kind"`
	Callsign         string               `json:"callsign"`
	ChapterID        *uuid.UUID           `json:"chapter_id,omitempty"`
	State            string               `json:"state"`
	Questions        []QuestionForTrainee `json:"questions,omitempty"`
	AnsweredCount    int                  `json:"answered_count"`
	QuestionCount    int                  `json:"question_count"`
	RemainingSeconds *int                 `json:"remaining_seconds,omitempty"`
}

package model

import (
	"github.com/google/uuid"
)

// ExamKind distinguishes chapter quizzes from the comprehensive final exam.
type ExamKind string

const (
	ExamKindQuiz  ExamKind = "quiz"
	ExamKindFinal ExamKind = "final"
)

// Question is a single multiple-choice question. Final-exam questions carry a
// nil ChapterID; quiz questions belong to exactly one chapter. Options a and b
// are mandatory, c and d optional.
type Question struct {
	ID            uuid.UUID  `json:"id"`
	ChapterID     *uuid.UUID `json:"chapter_id,omitempty"`
	ExamType      ExamKind   `json:"exam_type"`
	QuestionText  string     `json:"question_text"`
	ImageURL      *string    `json:"image_url,omitempty"`
	AudioURL      *string    `json:"audio_url,omitempty"`
	OptionA       string     `json:"option_a"`
	OptionB       string     `json:"option_b"`
	OptionC       *string    `json:"option_c,omitempty"`
	OptionD       *string    `json:"option_d,omitempty"`
	CorrectAnswer string     `json:"correct_answer"`
	Explanation   *string    `json:"explanation,omitempty"`
}

// Option returns the text of the option with the given label and whether that
// option is present on this question.
func (q *Question) Option(label string) (string, bool) {
	switch label {
	case "a":
		return q.OptionA, true
	case "b":
		return q.OptionB, true
	case "c":
		if q.OptionC != nil {
			return *q.OptionC, true
		}
	case "d":
		if q.OptionD != nil {
			return *q.OptionD, true
		}
	}
	return "", false
}

// QuestionForTrainee is a question stripped of the answer key and explanation,
// safe to send to a trainee while a session is in progress.
type QuestionForTrainee struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	ImageURL     *string   `json:"image_url,omitempty"`
	AudioURL     *string   `json:"audio_url,omitempty"`
	OptionA      string    `json:"option_a"`
	OptionB      string    `json:"option_b"`
	OptionC      *string   `json:"option_c,omitempty"`
	OptionD      *string   `json:"option_d,omitempty"`
}

// ForTrainee redacts the answer key from a question.
func (q *Question) ForTrainee() QuestionForTrainee {
	return QuestionForTrainee{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		ImageURL:     q.ImageURL,
		AudioURL:     q.AudioURL,
		OptionA:      q.OptionA,
		OptionB:      q.OptionB,
		OptionC:      q.OptionC,
		OptionD:      q.OptionD,
	}
}

// QuestionsForTrainee redacts a whole question set, preserving order.
func QuestionsForTrainee(questions []Question) []QuestionForTrainee {
	out := make([]QuestionForTrainee, len(questions))
	for i := range questions {
		out[i] = questions[i].ForTrainee()
	}
	return out
}

package engine

import (
	"math"
	"strings"

	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

const (
	// QuizPointsPerQuestion is the fixed per-question contribution on quizzes.
	QuizPointsPerQuestion = 10
	// QuizPassScore is the minimum passing quiz score.
	QuizPassScore = 70
	// FinalPassScore is the minimum passing final-exam score.
	FinalPassScore = 80
)

// Grade scores a frozen question set against a final answer mapping (keyed by
// question ID string). It is a pure function: no partial credit, no negative
// marking, no per-question weighting.
func Grade(kind model.ExamKind, questions []model.Question, answers map[string]string) (score int, passed bool) {
	correct := 0
	for i := range questions {
		if AnswerMatches(answers[questions[i].ID.String()], questions[i].CorrectAnswer) {
			correct++
		}
	}

	switch kind {
	case model.ExamKindQuiz:
		score = correct * QuizPointsPerQuestion
		passed = score >= QuizPassScore
	case model.ExamKindFinal:
		if len(questions) > 0 {
			score = int(math.Round(float64(correct) / float64(len(questions)) * 100))
		}
		passed = score >= FinalPassScore
	}
	return score, passed
}

// AnswerMatches compares a submitted option label against the correct label.
// Both sides are trimmed and case-folded; a missing answer never matches.
func AnswerMatches(submitted, correct string) bool {
	sub := strings.TrimSpace(submitted)
	if sub == "" {
		return false
	}
	return strings.EqualFold(sub, strings.TrimSpace(correct))
}

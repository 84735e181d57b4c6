package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeQuizScoreIsMultipleOfTen(t *testing.T) {
	qs := makeQuestions(10, "quiz", nil)

	for correct := 0; correct <= 10; correct++ {
		answers := map[string]string{}
		for i := 0; i < correct; i++ {
			answers[qs[i].ID.String()] = "b"
		}

		score, _ := Grade("quiz", qs, answers)
		assert.Equal(t, correct*10, score)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
		assert.Zero(t, score%10)
	}
}

func TestGradeQuizPassThreshold(t *testing.T) {
	qs := makeQuestions(10, "quiz", nil)

	answers := map[string]string{}
	for i := 0; i < 7; i++ {
		answers[qs[i].ID.String()] = "b"
	}
	score, passed := Grade("quiz", qs, answers)
	assert.Equal(t, 70, score)
	assert.True(t, passed, "exactly 70 must pass")

	delete(answers, qs[6].ID.String())
	score, passed = Grade("quiz", qs, answers)
	assert.Equal(t, 60, score)
	assert.False(t, passed)
}

func TestGradeFinalRounding(t *testing.T) {
	qs := makeQuestions(20, "final", nil)

	answers := map[string]string{}
	for i := 0; i < 15; i++ {
		answers[qs[i].ID.String()] = "b"
	}
	score, passed := Grade("final", qs, answers)
	assert.Equal(t, 75, score, "round(15/20*100)")
	assert.False(t, passed, "75 is below the 80 threshold")

	answers[qs[15].ID.String()] = "b"
	score, passed = Grade("final", qs, answers)
	assert.Equal(t, 80, score)
	assert.True(t, passed, "exactly 80 must pass")
}

func TestGradeFinalAllCorrect(t *testing.T) {
	qs := makeQuestions(20, "final", nil)
	score, passed := Grade("final", qs, answerAll(qs, "B"))
	assert.Equal(t, 100, score)
	assert.True(t, passed)
}

func TestGradeMissingAnswersNeverMatch(t *testing.T) {
	qs := makeQuestions(10, "quiz", nil)
	score, passed := Grade("quiz", qs, map[string]string{})
	assert.Zero(t, score)
	assert.False(t, passed)
}

func TestAnswerMatchesNormalization(t *testing.T) {
	assert.True(t, AnswerMatches("A", " a "), "case and whitespace are ignored")
	assert.True(t, AnswerMatches(" b", "B"))
	assert.False(t, AnswerMatches("", "a"), "missing answer never matches")
	assert.False(t, AnswerMatches("   ", "a"))
	assert.False(t, AnswerMatches("a", "b"))
}

func TestGradeWhitespaceCorrectAnswer(t *testing.T) {
	qs := makeQuestions(1, "quiz", nil)
	qs[0].CorrectAnswer = " a "

	score, _ := Grade("quiz", qs, map[string]string{qs[0].ID.String(): "A"})
	assert.Equal(t, 10, score)
}

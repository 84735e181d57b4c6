package engine

import (
	"context"
	"fmt"

	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

// ReportItem pairs one question with the trainee's submitted answer.
type ReportItem struct {
	Question        model.Question `json:"question"`
	SubmittedAnswer string         `json:"submitted_answer,omitempty"`
	Answered        bool           `json:"answered"`
	Correct         bool           `json:"correct"`
}

// Report is a reviewable or redacted diagnostic view of a stored Result. It
// is read-only and never mutates the Result.
type Report struct {
	Result   model.Result `json:"result"`
	Redacted bool         `json:"redacted"`
	Items    []ReportItem `json:"items,omitempty"`
}

// ReportBuilder reconciles stored results with question content.
type ReportBuilder struct {
	questions QuestionSource
}

// NewReportBuilder creates a report builder over the question source.
func NewReportBuilder(questions QuestionSource) *ReportBuilder {
	return &ReportBuilder{questions: questions}
}

// Build produces the diagnostic view for a result. Final-exam results are
// always redacted: no answer key, no per-question review, no submitted
// answers. Quiz results get a full per-question review using the same
// normalized comparison as grading.
func (b *ReportBuilder) Build(ctx context.Context, result model.Result) (*Report, error) {
	if result.ExamType == model.ExamKindFinal {
		redacted := result
		redacted.DetailedAnswers = nil
		return &Report{Result: redacted, Redacted: true}, nil
	}

	questions, err := b.questions.List(ctx, QuestionFilter{ChapterID: result.ChapterID, ExamType: model.ExamKindQuiz})
	if err != nil {
		return nil, fmt.Errorf("list chapter questions: %w", err)
	}

	items := make([]ReportItem, 0, len(questions))
	for i := range questions {
		submitted, answered := result.DetailedAnswers[questions[i].ID.String()]
		items = append(items, ReportItem{
			Question:        questions[i],
			SubmittedAnswer: submitted,
			Answered:        answered,
			Correct:         AnswerMatches(submitted, questions[i].CorrectAnswer),
		})
	}

	return &Report{Result: result, Items: items}, nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sjx-training/atc-assessment-backend/internal/engine"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

// QuestionRepository handles question data access. It implements
// engine.QuestionSource.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, chapter_id, exam_type, question_text, image_url, audio_url,
	option_a, option_b, option_c, option_d, correct_answer, explanation`

// List retrieves questions matching the filter. Rows come back in insertion
// order (created_at, id), which gives the engine the stable ordering it
// relies on for quiz sampling.
func (r *QuestionRepository) List(ctx context.Context, filter engine.QuestionFilter) ([]model.Question, error) {
	var rows pgx.Rows
	var err error

	if filter.ChapterID != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+questionColumns+`
			 FROM questions
			 WHERE exam_type = $1 AND chapter_id = $2
			 ORDER BY created_at, id`, filter.ExamType, *filter.ChapterID)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+questionColumns+`
			 FROM questions
			 WHERE exam_type = $1
			 ORDER BY created_at, id`, filter.ExamType)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.ChapterID, &q.ExamType, &q.QuestionText, &q.ImageURL, &q.AudioURL,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer, &q.Explanation,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

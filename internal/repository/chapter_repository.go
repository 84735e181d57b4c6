package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

// ChapterRepository handles chapter data access. Chapters are owned by the
// instructor tooling; this repository only reads.
type ChapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository creates a new ChapterRepository.
func NewChapterRepository(pool *pgxpool.Pool) *ChapterRepository {
	return &ChapterRepository{pool: pool}
}

// List retrieves all chapters ordered by name.
func (r *ChapterRepository) List(ctx context.Context) ([]model.Chapter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, chapter_name, COALESCE(description, ''), created_at
		 FROM chapters
		 ORDER BY chapter_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []model.Chapter
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.ChapterName, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

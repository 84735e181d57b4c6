package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sjx-training/atc-assessment-backend/internal/config"
	"github.com/sjx-training/atc-assessment-backend/internal/database"
	"github.com/sjx-training/atc-assessment-backend/internal/logger"
)

const (
	quizQuestionsPerChapter = 12
	finalQuestions          = 25
)

// Seeds a demo dataset: trainees, chapters and enough questions to run both
// the chapter quizzes and the final exam.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding demo data ===")

	trainees := map[string]string{
		"SJX101": "Adi Pratama",
		"SJX102": "Bella Hartono",
		"SJX103": "Chandra Wijaya",
		"SJX104": "Dewi Lestari",
	}
	for callsign, name := range trainees {
		_, err := pool.Exec(ctx,
			`INSERT INTO trainees (callsign, name) VALUES ($1, $2)
			 ON CONFLICT (callsign) DO NOTHING`,
			callsign, name)
		if err != nil {
			log.Fatal().Err(err).Str("callsign", callsign).Msg("Failed to seed trainee")
		}
	}
	fmt.Printf("Seeded %d trainees\n", len(trainees))

	chapters := []struct {
		name        string
		description string
	}{
		{"Phraseology Basics", "Standard radiotelephony phraseology and readback rules"},
		{"Tower Procedures", "Runway, taxi and circuit control from the tower position"},
		{"Approach Control", "Sequencing, vectoring and separation on approach"},
		{"Emergency Handling", "Distress, urgency and abnormal situation procedures"},
	}

	totalQuiz := 0
	for _, ch := range chapters {
		var chapterID uuid.UUID
		err := pool.QueryRow(ctx,
			`INSERT INTO chapters (chapter_name, description) VALUES ($1, $2)
			 RETURNING id`,
			ch.name, ch.description).Scan(&chapterID)
		if err != nil {
			log.Fatal().Err(err).Str("chapter", ch.name).Msg("Failed to seed chapter")
		}

		if err := seedQuestions(ctx, pool, &chapterID, "quiz", ch.name, quizQuestionsPerChapter); err != nil {
			log.Fatal().Err(err).Str("chapter", ch.name).Msg("Failed to seed quiz questions")
		}
		totalQuiz += quizQuestionsPerChapter
	}
	fmt.Printf("Seeded %d chapters with %d quiz questions\n", len(chapters), totalQuiz)

	if err := seedQuestions(ctx, pool, nil, "final", "Final Assessment", finalQuestions); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed final exam questions")
	}
	fmt.Printf("Seeded %d final exam questions\n", finalQuestions)

	fmt.Println("Done")
}

func seedQuestions(ctx context.Context, pool *pgxpool.Pool, chapterID *uuid.UUID, examType, topic string, count int) error {
	answers := []string{"a", "b", "c", "d"}
	for i := 1; i <= count; i++ {
		correct := answers[i%len(answers)]
		_, err := pool.Exec(ctx,
			`INSERT INTO questions
			   (chapter_id, exam_type, question_text, option_a, option_b, option_c, option_d, correct_answer, explanation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			chapterID, examType,
			fmt.Sprintf("%s sample question %d: which response is correct?", topic, i),
			fmt.Sprintf("Sample option A for question %d", i),
			fmt.Sprintf("Sample option B for question %d", i),
			fmt.Sprintf("Sample option C for question %d", i),
			fmt.Sprintf("Sample option D for question %d", i),
			correct,
			fmt.Sprintf("Option %s is the prescribed procedure for this scenario.", correct))
		if err != nil {
			return err
		}
	}
	return nil
}

package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scythe504/tiktakpaf-backend/internal"
)

type Questions struct {
	pool *pgxpool.Pool
}

const questionColumns = "id, question, answer, difficulty, game_mode"

func scanQuestion(row pgx.CollectableRow) (internal.Question, error) {
	var q internal.Question
	err := row.Scan(&q.ID, &q.Text, &q.Answer, &q.Difficulty, &q.GameMode)
	return q, err
}

func (q *Questions) FindByID(ctx context.Context, id string) (internal.Question, error) {
	rows, err := q.pool.Query(ctx, "SELECT "+questionColumns+" FROM questions WHERE id = $1", id)
	if err != nil {
		return internal.Question{}, mapErr("find question", err)
	}
	question, err := pgx.CollectExactlyOneRow(rows, scanQuestion)
	if err != nil {
		return internal.Question{}, mapErr("find question", err)
	}
	return question, nil
}

func (q *Questions) FindByDifficultyAndMode(ctx context.Context, difficulty internal.Difficulty, gameMode string) ([]internal.Question, error) {
	rows, err := q.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE difficulty = $1 AND ($2 = '' OR game_mode = '' OR game_mode = $2)
		 ORDER BY id`,
		difficulty, gameMode)
	if err != nil {
		return nil, mapErr("find questions", err)
	}
	questions, err := pgx.CollectRows(rows, scanQuestion)
	if err != nil {
		return nil, mapErr("find questions", err)
	}
	return questions, nil
}

// Insert upserts the questions in one batch and returns how many were
// written. Questions without an id get a new one.
func (q *Questions) Insert(ctx context.Context, questions []internal.Question) (int, error) {
	batch := &pgx.Batch{}
	for _, question := range questions {
		if question.ID == "" {
			question.ID = uuid.NewString()
		}
		batch.Queue(
			`INSERT INTO questions (`+questionColumns+`) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET question = EXCLUDED.question, answer = EXCLUDED.answer,
			   difficulty = EXCLUDED.difficulty, game_mode = EXCLUDED.game_mode`,
			question.ID, question.Text, question.Answer, question.Difficulty, question.GameMode)
	}

	results := q.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range questions {
		if _, err := results.Exec(); err != nil {
			return i, mapErr(fmt.Sprintf("insert question %d", i), err)
		}
	}
	return len(questions), nil
}

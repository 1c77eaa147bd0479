package repositories

import (
	"context"
	"fmt"

	"github.com/askeland/riskgate/internal/database"
	"github.com/askeland/riskgate/internal/models"
	"github.com/jackc/pgx/v5"
)

// SecurityQuestionRepository handles the shared question bank plus the
// per-user answer records.
type SecurityQuestionRepository struct {
	db *database.DB
}

func NewSecurityQuestionRepository(db *database.DB) *SecurityQuestionRepository {
	return &SecurityQuestionRepository{db: db}
}

// Bank lists every question available for setup.
func (r *SecurityQuestionRepository) Bank(ctx context.Context) ([]models.SecurityQuestion, error) {
	query := `SELECT id, question FROM security_question_bank ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query question bank: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// QuestionsForUser returns the question texts the user has configured
// answers for, without the answers.
func (r *SecurityQuestionRepository) QuestionsForUser(ctx context.Context, username string) ([]models.SecurityQuestion, error) {
	query := `
		SELECT qb.id, qb.question
		FROM security_questions sq
		JOIN security_question_bank qb ON qb.id = sq.question_id
		WHERE sq.username = $1
		ORDER BY qb.id
	`

	rows, err := r.db.Pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query user questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// CountForUser reports how many answer records the user has configured.
func (r *SecurityQuestionRepository) CountForUser(ctx context.Context, username string) (int, error) {
	query := `SELECT COUNT(*) FROM security_questions WHERE username = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, username).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

// GetRecord fetches the answer record for one exact user/question pair.
func (r *SecurityQuestionRepository) GetRecord(ctx context.Context, username string, questionID int64) (*models.SecurityQuestionRecord, error) {
	query := `
		SELECT username, question_id, answer_hash, salt
		FROM security_questions
		WHERE username = $1 AND question_id = $2
	`

	var record models.SecurityQuestionRecord
	err := r.db.Pool.QueryRow(ctx, query, username, questionID).Scan(
		&record.Username, &record.QuestionID, &record.AnswerHash, &record.Salt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &record, nil
}

// ReplaceForUser swaps the user's answer records atomically. The unique
// (username, question_id) constraint backs the no-duplicate-question rule.
func (r *SecurityQuestionRepository) ReplaceForUser(ctx context.Context, username string, records []models.SecurityQuestionRecord) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM security_questions WHERE username = $1`, username); err != nil {
			return database.MapPostgresError(err)
		}

		for _, record := range records {
			_, err := tx.Exec(ctx, `
				INSERT INTO security_questions (username, question_id, answer_hash, salt)
				VALUES ($1, $2, $3, $4)
			`, username, record.QuestionID, record.AnswerHash, record.Salt)
			if err != nil {
				return database.MapPostgresError(err)
			}
		}

		return nil
	})
}

func scanQuestions(rows pgx.Rows) ([]models.SecurityQuestion, error) {
	questions := make([]models.SecurityQuestion, 0, models.RequiredSecurityQuestions)
	for rows.Next() {
		var q models.SecurityQuestion
		if err := rows.Scan(&q.ID, &q.Question); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}

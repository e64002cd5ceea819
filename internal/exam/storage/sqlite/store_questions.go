package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"examsim/internal/exam/domain"
	"examsim/internal/exam/filter"
	"examsim/internal/exam/storage"
)

const questionColumns = `id, certification, domain, question_text, kind,
	        options, correct_answers, explanation, difficulty, created_at`

// PutQuestion inserts one question record and returns its generated id.
func (s *Store) PutQuestion(ctx context.Context, question domain.Question) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	optionsJSON, err := json.Marshal(question.Options)
	if err != nil {
		return 0, fmt.Errorf("marshal options: %w", err)
	}
	correctJSON, err := json.Marshal(question.CorrectAnswers)
	if err != nil {
		return 0, fmt.Errorf("marshal correct answers: %w", err)
	}

	createdAt := question.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO questions (
		   certification, domain, question_text, kind,
		   options, correct_answers, explanation, difficulty, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		question.Certification,
		question.Domain,
		question.Text,
		string(question.Kind),
		string(optionsJSON),
		string(correctJSON),
		question.Explanation,
		string(question.Difficulty),
		toMillis(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("put question: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("question insert id: %w", err)
	}
	return id, nil
}

// GetQuestion returns one question by id.
func (s *Store) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return domain.Question{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Question{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+questionColumns+`
		   FROM questions
		  WHERE id = ?`,
		id,
	)
	question, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Question{}, storage.ErrNotFound
		}
		return domain.Question{}, fmt.Errorf("get question: %w", err)
	}
	return question, nil
}

// ListQuestionsByCertification returns a certification's questions, optionally
// narrowed by a translated filter condition. Order follows insertion order;
// callers that need a different order shuffle or sort themselves.
func (s *Store) ListQuestionsByCertification(ctx context.Context, certification string, condition filter.Condition) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `SELECT ` + questionColumns + `
	   FROM questions
	  WHERE certification = ?`
	params := []any{certification}
	if !condition.Empty() {
		query += " AND " + condition.Clause
		params = append(params, condition.Params...)
	}
	query += " ORDER BY id ASC"

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// CountQuestionsByCertification returns the pool size for a certification.
func (s *Store) CountQuestionsByCertification(ctx context.Context, certification string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM questions WHERE certification = ?`,
		certification,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (domain.Question, error) {
	var question domain.Question
	var kind string
	var difficulty string
	var optionsJSON string
	var correctJSON string
	var createdAt int64
	if err := row.Scan(
		&question.ID,
		&question.Certification,
		&question.Domain,
		&question.Text,
		&kind,
		&optionsJSON,
		&correctJSON,
		&question.Explanation,
		&difficulty,
		&createdAt,
	); err != nil {
		return domain.Question{}, err
	}
	if err := json.Unmarshal([]byte(optionsJSON), &question.Options); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal options: %w", err)
	}
	if err := json.Unmarshal([]byte(correctJSON), &question.CorrectAnswers); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal correct answers: %w", err)
	}
	question.Kind = domain.Kind(kind)
	question.Difficulty = domain.Difficulty(difficulty)
	question.CreatedAt = fromMillis(createdAt)
	return question, nil
}

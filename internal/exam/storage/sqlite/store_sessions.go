package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"examsim/internal/exam/domain"
	"examsim/internal/exam/storage"
)

const sessionColumns = `id, certification, display_name, total_questions,
	        correct_answers, score, time_taken, started_at, completed_at, questions_data`

// PutSession inserts a new session record.
func (s *Store) PutSession(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	var timeTaken sql.NullInt64
	if session.TimeTakenSeconds != nil {
		timeTaken = sql.NullInt64{Int64: int64(*session.TimeTakenSeconds), Valid: true}
	}
	var completedAt sql.NullInt64
	if session.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: toMillis(*session.CompletedAt), Valid: true}
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO simulation_sessions (
		   id, certification, display_name, total_questions,
		   correct_answers, score, time_taken, started_at, completed_at, questions_data
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.Certification,
		session.DisplayName,
		session.TotalQuestions,
		session.CorrectAnswers,
		session.Score,
		timeTaken,
		toMillis(session.StartedAt),
		completedAt,
		session.Payload,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession returns one session by id.
func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Session{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+`
		   FROM simulation_sessions
		  WHERE id = ?`,
		id,
	)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, storage.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// CompleteSession commits the scored terminal state. The completed_at guard
// makes the write a compare-and-swap: only the first submit lands, later
// attempts see ErrAlreadyCompleted.
func (s *Store) CompleteSession(ctx context.Context, input storage.CompleteSessionInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE simulation_sessions
		    SET correct_answers = ?,
		        score = ?,
		        time_taken = ?,
		        completed_at = ?,
		        questions_data = ?
		  WHERE id = ? AND completed_at IS NULL`,
		input.CorrectAnswers,
		input.Score,
		input.TimeTakenSeconds,
		toMillis(input.CompletedAt),
		input.Payload,
		input.SessionID,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Zero rows means the guard rejected the write or the session is missing.
	var exists int
	err = s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM simulation_sessions WHERE id = ?`,
		input.SessionID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return storage.ErrAlreadyCompleted
}

// CertificationStats aggregates pool size and session outcomes for one
// certification. Averages and pass rate cover completed sessions only.
func (s *Store) CertificationStats(ctx context.Context, certification string, passThreshold int) (storage.CertificationStats, error) {
	if err := ctx.Err(); err != nil {
		return storage.CertificationStats{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CertificationStats{}, fmt.Errorf("storage is not configured")
	}

	var stats storage.CertificationStats
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM questions WHERE certification = ?`,
		certification,
	).Scan(&stats.QuestionCount)
	if err != nil {
		return storage.CertificationStats{}, fmt.Errorf("certification stats: %w", err)
	}

	var passCount int
	var avgScore sql.NullFloat64
	err = s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*),
		        COUNT(completed_at),
		        COALESCE(SUM(CASE WHEN completed_at IS NOT NULL AND score >= ? THEN 1 ELSE 0 END), 0),
		        AVG(CASE WHEN completed_at IS NOT NULL THEN score END)
		   FROM simulation_sessions
		  WHERE certification = ?`,
		passThreshold,
		certification,
	).Scan(&stats.SessionCount, &stats.CompletedCount, &passCount, &avgScore)
	if err != nil {
		return storage.CertificationStats{}, fmt.Errorf("certification stats: %w", err)
	}
	if avgScore.Valid {
		stats.AverageScore = avgScore.Float64
	}
	if stats.CompletedCount > 0 {
		stats.PassRatePercent = float64(passCount) / float64(stats.CompletedCount) * 100
	}
	return stats, nil
}

func scanSession(row rowScanner) (domain.Session, error) {
	var session domain.Session
	var timeTaken sql.NullInt64
	var startedAt int64
	var completedAt sql.NullInt64
	if err := row.Scan(
		&session.ID,
		&session.Certification,
		&session.DisplayName,
		&session.TotalQuestions,
		&session.CorrectAnswers,
		&session.Score,
		&timeTaken,
		&startedAt,
		&completedAt,
		&session.Payload,
	); err != nil {
		return domain.Session{}, err
	}
	if timeTaken.Valid {
		seconds := int(timeTaken.Int64)
		session.TimeTakenSeconds = &seconds
	}
	session.StartedAt = fromMillis(startedAt)
	if completedAt.Valid {
		at := fromMillis(completedAt.Int64)
		session.CompletedAt = &at
	}
	return session, nil
}

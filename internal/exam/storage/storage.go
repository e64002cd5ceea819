// Package storage defines persistence contracts for exam-simulation state.
package storage

import (
	"context"
	"errors"
	"time"

	"examsim/internal/exam/domain"
	"examsim/internal/exam/filter"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrAlreadyCompleted indicates a completion write lost the first-submit race
	// or targeted a session that was already terminal.
	ErrAlreadyCompleted = errors.New("session already completed")
)

// QuestionStore persists immutable question records.
type QuestionStore interface {
	PutQuestion(ctx context.Context, question domain.Question) (int64, error)
	GetQuestion(ctx context.Context, id int64) (domain.Question, error)
	ListQuestionsByCertification(ctx context.Context, certification string, condition filter.Condition) ([]domain.Question, error)
	CountQuestionsByCertification(ctx context.Context, certification string) (int, error)
}

// CompleteSessionInput carries the atomic state transition written at submit.
type CompleteSessionInput struct {
	SessionID        string
	CorrectAnswers   int
	Score            int
	TimeTakenSeconds int
	CompletedAt      time.Time
	Payload          string
}

// CertificationStats is the aggregate summary for one certification.
// AverageScore and PassRate cover completed sessions only and read as zero
// when none exist.
type CertificationStats struct {
	QuestionCount   int
	SessionCount    int
	CompletedCount  int
	AverageScore    float64
	PassRatePercent float64
}

// SessionStore persists simulation sessions.
type SessionStore interface {
	PutSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	// CompleteSession commits the scored state and the rewritten payload in one
	// transaction, guarded by a compare-and-swap on the terminal marker so the
	// first submit wins. Returns ErrAlreadyCompleted when the session is
	// already terminal and ErrNotFound when it does not exist.
	CompleteSession(ctx context.Context, input CompleteSessionInput) error
	CertificationStats(ctx context.Context, certification string, passThreshold int) (CertificationStats, error)
}

// TelemetryEvent is one operational observation appended to the journal.
type TelemetryEvent struct {
	EventName     string
	Severity      string
	Certification string
	SessionID     string
	Timestamp     time.Time
	Attributes    map[string]any
}

// TelemetryStore appends operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, event TelemetryEvent) error
}

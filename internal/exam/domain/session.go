package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "examsim/internal/platform/errors"
)

// Status describes where a session sits in its lifecycle. There is no path
// back from StatusCompleted.
type Status int

const (
	StatusUnspecified Status = iota
	// StatusInProgress covers a created session before submission.
	StatusInProgress
	// StatusCompleted is terminal; set when answers are submitted.
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	default:
		return "unspecified"
	}
}

// Session is one timed attempt at a sampled subset of a certification's
// questions. Payload holds the serialized question/result data; its shape
// evolves across the lifecycle (see payload.go).
type Session struct {
	ID               string
	Certification    string
	DisplayName      string
	TotalQuestions   int
	CorrectAnswers   int
	Score            int
	TimeTakenSeconds *int
	StartedAt        time.Time
	CompletedAt      *time.Time
	Payload          string
}

// Status derives the lifecycle state from the terminal marker.
func (s Session) Status() Status {
	if s.CompletedAt != nil {
		return StatusCompleted
	}
	return StatusInProgress
}

// Completed reports whether the session is terminal.
func (s Session) Completed() bool {
	return s.CompletedAt != nil
}

// CreateSessionInput describes a new session over an ordered question draw.
type CreateSessionInput struct {
	Certification string
	DisplayName   string
	QuestionIDs   []int64
}

// CreateSession builds a new in-progress session with a generated ID and the
// v1 payload (the bare ordered identifier list). The draw order is the
// canonical position-to-question mapping used at submission.
func CreateSession(input CreateSessionInput, now func() time.Time, idGenerator func() (string, error)) (Session, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	certification := strings.TrimSpace(input.Certification)
	if certification == "" {
		return Session{}, apperrors.New(apperrors.CodeQuestionEmptyCertification, "certification is required")
	}
	if len(input.QuestionIDs) == 0 {
		return Session{}, apperrors.New(apperrors.CodeSessionInvalidCount, "at least one question is required")
	}

	sessionID, err := idGenerator()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}

	payload, err := EncodeIDListPayload(input.QuestionIDs)
	if err != nil {
		return Session{}, fmt.Errorf("encode session payload: %w", err)
	}

	return Session{
		ID:             sessionID,
		Certification:  certification,
		DisplayName:    strings.TrimSpace(input.DisplayName),
		TotalQuestions: len(input.QuestionIDs),
		StartedAt:      now().UTC(),
		Payload:        payload,
	}, nil
}

package app

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"examsim/internal/exam/domain"
	"examsim/internal/exam/filter"
	"examsim/internal/exam/storage"
	apperrors "examsim/internal/platform/errors"
	"examsim/internal/telemetry"
)

// StartSessionInput describes a new simulation request.
type StartSessionInput struct {
	Certification string
	DisplayName   string
	QuestionCount int
}

// StartedSession is the response to a successful start: the persisted session
// plus the drawn questions, answer-stripped, in draw order.
type StartedSession struct {
	Session       domain.Session
	Certification domain.Certification
	Questions     []domain.QuestionView
}

// SessionDetail is an in-progress session rehydrated for answering.
type SessionDetail struct {
	Session       domain.Session
	Certification domain.Certification
	Questions     []domain.QuestionView
}

// SubmitInput carries a submission: answers are keyed by draw position, each
// value the set of selected option indices.
type SubmitInput struct {
	SessionID        string
	Answers          map[int][]int
	TimeTakenSeconds int
}

// SubmitResult is the scored outcome of a submission.
type SubmitResult struct {
	SessionID      string
	Certification  domain.Certification
	TotalQuestions int
	CorrectAnswers int
	Score          int
	Percentage     float64
	Passed         bool
	Details        []domain.DetailRecord
}

// ResultsView is the stored outcome of a session, served without re-grading.
// Percentage derives from the stored counters, never from the payload.
type ResultsView struct {
	Session       domain.Session
	Certification domain.Certification
	Percentage    float64
	Passed        bool
	Details       []domain.DetailRecord
}

// StartSession draws a random subset of the certification's question pool and
// persists a new in-progress session over it. The pool must be at least as
// large as the request; nothing is created otherwise.
func (e *Engine) StartSession(ctx context.Context, input StartSessionInput) (StartedSession, error) {
	ctx, span := e.tracer.Start(ctx, "StartSession")
	defer span.End()
	span.SetAttributes(
		attribute.String("certification", input.Certification),
		attribute.Int("question_count", input.QuestionCount),
	)

	if input.QuestionCount <= 0 {
		return StartedSession{}, apperrors.New(apperrors.CodeSessionInvalidCount,
			"question count must be positive")
	}

	pool, err := e.stores.Questions.ListQuestionsByCertification(ctx, input.Certification, filter.Condition{})
	if err != nil {
		span.RecordError(err)
		return StartedSession{}, apperrors.Wrap(apperrors.CodeStorageFailure, "list question pool", err)
	}
	if len(pool) < input.QuestionCount {
		return StartedSession{}, apperrors.WithMetadata(apperrors.CodeSessionInsufficientQuestions,
			"not enough questions available",
			map[string]string{
				"available": strconv.Itoa(len(pool)),
				"requested": strconv.Itoa(input.QuestionCount),
			})
	}

	drawn := make([]domain.Question, 0, input.QuestionCount)
	for _, index := range e.rng.Perm(len(pool))[:input.QuestionCount] {
		drawn = append(drawn, pool[index])
	}
	questionIDs := make([]int64, 0, len(drawn))
	views := make([]domain.QuestionView, 0, len(drawn))
	for _, question := range drawn {
		questionIDs = append(questionIDs, question.ID)
		views = append(views, question.View())
	}

	session, err := domain.CreateSession(domain.CreateSessionInput{
		Certification: input.Certification,
		DisplayName:   input.DisplayName,
		QuestionIDs:   questionIDs,
	}, e.clock, e.idGen)
	if err != nil {
		span.RecordError(err)
		return StartedSession{}, err
	}
	if err := e.stores.Sessions.PutSession(ctx, session); err != nil {
		span.RecordError(err)
		return StartedSession{}, apperrors.Wrap(apperrors.CodeStorageFailure, "put session", err)
	}

	e.emitEvent(ctx, storage.TelemetryEvent{
		EventName:     telemetry.EventSessionStarted,
		Certification: session.Certification,
		SessionID:     session.ID,
		Attributes:    map[string]any{"question_count": strconv.Itoa(len(questionIDs))},
	})
	return StartedSession{
		Session:       session,
		Certification: domain.CertificationMetadata(session.Certification),
		Questions:     views,
	}, nil
}

// FetchInProgress rehydrates an in-progress session for answering. Question
// ids no longer present in the store are skipped without error.
func (e *Engine) FetchInProgress(ctx context.Context, sessionID string) (SessionDetail, error) {
	ctx, span := e.tracer.Start(ctx, "FetchInProgress")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID))

	session, err := e.getSession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return SessionDetail{}, err
	}
	if session.Completed() {
		return SessionDetail{}, apperrors.New(apperrors.CodeSessionAlreadyCompleted,
			"session is already completed")
	}

	payload, _, err := domain.DecodePayload(session.Payload)
	if err != nil {
		span.RecordError(err)
		return SessionDetail{}, err
	}
	questions, err := e.rehydrateQuestions(ctx, payload.QuestionIDs)
	if err != nil {
		span.RecordError(err)
		return SessionDetail{}, err
	}
	views := make([]domain.QuestionView, 0, len(questions))
	for _, graded := range questions {
		views = append(views, graded.Question.View())
	}
	return SessionDetail{
		Session:       session,
		Certification: domain.CertificationMetadata(session.Certification),
		Questions:     views,
	}, nil
}

// Submit grades a session's answers and commits the terminal state. The
// completion write is a compare-and-swap, so the first submit wins even under
// a concurrent double submission.
func (e *Engine) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	ctx, span := e.tracer.Start(ctx, "Submit")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", input.SessionID))

	session, err := e.getSession(ctx, input.SessionID)
	if err != nil {
		span.RecordError(err)
		return SubmitResult{}, err
	}
	if session.Completed() {
		return SubmitResult{}, apperrors.New(apperrors.CodeSessionAlreadyCompleted,
			"session is already completed")
	}

	payload, _, err := domain.DecodePayload(session.Payload)
	if err != nil {
		span.RecordError(err)
		return SubmitResult{}, err
	}
	questions, err := e.rehydrateQuestions(ctx, payload.QuestionIDs)
	if err != nil {
		span.RecordError(err)
		return SubmitResult{}, err
	}

	graded := domain.Grade(questions, input.Answers)
	// The denominator is the session's stored draw size, not the count of
	// questions that still resolve: a dangling id counts against the taker,
	// and the synchronous result matches what FetchResults later recomputes
	// from the stored counters.
	total := session.TotalQuestions
	percentage := domain.Percentage(graded.CorrectCount, total)
	score := domain.ScaledScore(percentage)
	certification := domain.CertificationMetadata(session.Certification)

	scoredPayload, err := domain.EncodeScoredPayload(domain.Payload{
		QuestionIDs: payload.QuestionIDs,
		Details:     graded.Details,
	})
	if err != nil {
		span.RecordError(err)
		return SubmitResult{}, apperrors.Wrap(apperrors.CodeStorageFailure, "encode scored payload", err)
	}

	err = e.stores.Sessions.CompleteSession(ctx, storage.CompleteSessionInput{
		SessionID:        session.ID,
		CorrectAnswers:   graded.CorrectCount,
		Score:            score,
		TimeTakenSeconds: input.TimeTakenSeconds,
		CompletedAt:      e.now(),
		Payload:          scoredPayload,
	})
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, storage.ErrAlreadyCompleted):
			return SubmitResult{}, apperrors.New(apperrors.CodeSessionAlreadyCompleted,
				"session is already completed")
		case errors.Is(err, storage.ErrNotFound):
			return SubmitResult{}, apperrors.New(apperrors.CodeSessionNotFound, "session not found")
		default:
			return SubmitResult{}, apperrors.Wrap(apperrors.CodeStorageFailure, "complete session", err)
		}
	}

	e.emitEvent(ctx, storage.TelemetryEvent{
		EventName:     telemetry.EventSessionSubmitted,
		Certification: session.Certification,
		SessionID:     session.ID,
		Attributes: map[string]any{
			"score":           strconv.Itoa(score),
			"correct_answers": strconv.Itoa(graded.CorrectCount),
			"total_questions": strconv.Itoa(total),
		},
	})
	return SubmitResult{
		SessionID:      session.ID,
		Certification:  certification,
		TotalQuestions: total,
		CorrectAnswers: graded.CorrectCount,
		Score:          score,
		Percentage:     percentage,
		Passed:         score >= certification.PassingScore,
		Details:        graded.Details,
	}, nil
}

// FetchResults serves the stored outcome of a session. It works for
// incomplete sessions too: empty details and zero counters.
func (e *Engine) FetchResults(ctx context.Context, sessionID string) (ResultsView, error) {
	ctx, span := e.tracer.Start(ctx, "FetchResults")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID))

	session, err := e.getSession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return ResultsView{}, err
	}
	payload, _, err := domain.DecodePayload(session.Payload)
	if err != nil {
		span.RecordError(err)
		return ResultsView{}, err
	}

	certification := domain.CertificationMetadata(session.Certification)
	percentage := domain.Percentage(session.CorrectAnswers, session.TotalQuestions)
	return ResultsView{
		Session:       session,
		Certification: certification,
		Percentage:    percentage,
		Passed:        session.Completed() && session.Score >= certification.PassingScore,
		Details:       payload.Details,
	}, nil
}

func (e *Engine) getSession(ctx context.Context, sessionID string) (domain.Session, error) {
	if sessionID == "" {
		return domain.Session{}, apperrors.New(apperrors.CodeSessionEmptyID, "session id is required")
	}
	session, err := e.stores.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Session{}, apperrors.New(apperrors.CodeSessionNotFound, "session not found")
		}
		return domain.Session{}, apperrors.Wrap(apperrors.CodeStorageFailure, "get session", err)
	}
	return session, nil
}

// rehydrateQuestions loads the drawn questions in payload order, preserving
// each one's draw position and skipping ids that no longer resolve.
func (e *Engine) rehydrateQuestions(ctx context.Context, questionIDs []int64) ([]domain.GradedQuestion, error) {
	questions := make([]domain.GradedQuestion, 0, len(questionIDs))
	for position, id := range questionIDs {
		question, err := e.stores.Questions.GetQuestion(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "get question", err)
		}
		questions = append(questions, domain.GradedQuestion{Position: position, Question: question})
	}
	return questions, nil
}

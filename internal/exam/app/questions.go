package app

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"examsim/internal/exam/domain"
	"examsim/internal/exam/filter"
	"examsim/internal/exam/ingest"
	"examsim/internal/exam/storage"
	apperrors "examsim/internal/platform/errors"
	"examsim/internal/telemetry"
)

// ListCertifications returns the static certification table.
func (e *Engine) ListCertifications(ctx context.Context) []domain.Certification {
	_, span := e.tracer.Start(ctx, "ListCertifications")
	defer span.End()
	return domain.Certifications()
}

// ListQuestions returns answer-stripped questions for a certification. The
// filter expression is optional; when present it narrows by domain,
// difficulty, or question_type.
func (e *Engine) ListQuestions(ctx context.Context, certification, filterExpr string) ([]domain.QuestionView, error) {
	ctx, span := e.tracer.Start(ctx, "ListQuestions")
	defer span.End()
	span.SetAttributes(attribute.String("certification", certification))

	condition := filter.Condition{}
	if filterExpr != "" {
		parsed, err := filter.ParseQuestionFilter(filterExpr)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		condition = parsed
	}

	questions, err := e.stores.Questions.ListQuestionsByCertification(ctx, certification, condition)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "list questions", err)
	}
	views := make([]domain.QuestionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, question.View())
	}
	return views, nil
}

// AddQuestionInput describes a question to author. CorrectAnswers accepts the
// same key spellings the import path does: option letters, index strings, or
// plain integers.
type AddQuestionInput struct {
	Certification  string
	Domain         string
	Text           string
	Kind           string
	Options        []string
	CorrectAnswers []any
	Explanation    string
	Difficulty     string
}

// AddQuestion validates and persists one question, returning its id. Answer
// keys are resolved to zero-based indices at this boundary.
func (e *Engine) AddQuestion(ctx context.Context, input AddQuestionInput) (int64, error) {
	ctx, span := e.tracer.Start(ctx, "AddQuestion")
	defer span.End()
	span.SetAttributes(attribute.String("certification", input.Certification))

	kind, err := ingest.NormalizeKind(input.Kind)
	if err != nil {
		span.RecordError(err)
		return 0, apperrors.Wrap(apperrors.CodeQuestionInvalidKind, "resolve question type", err)
	}
	correct := make([]int, 0, len(input.CorrectAnswers))
	for i, key := range input.CorrectAnswers {
		index, err := ingest.ParseAnswerKey(key, len(input.Options))
		if err != nil {
			span.RecordError(err)
			return 0, apperrors.Wrap(apperrors.CodeQuestionInvalidAnswerKey,
				fmt.Sprintf("resolve answer key %d", i), err)
		}
		correct = append(correct, index)
	}

	question, err := domain.NormalizeNewQuestion(domain.NewQuestionInput{
		Certification:  input.Certification,
		Domain:         input.Domain,
		Text:           input.Text,
		Kind:           kind,
		Options:        input.Options,
		CorrectAnswers: correct,
		Explanation:    input.Explanation,
		Difficulty:     domain.Difficulty(input.Difficulty),
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	question.CreatedAt = e.now()

	id, err := e.stores.Questions.PutQuestion(ctx, question)
	if err != nil {
		span.RecordError(err)
		return 0, apperrors.Wrap(apperrors.CodeStorageFailure, "put question", err)
	}
	e.emitEvent(ctx, storage.TelemetryEvent{
		EventName:     telemetry.EventQuestionAdded,
		Certification: question.Certification,
		Attributes:    map[string]any{"question_id": strconv.FormatInt(id, 10)},
	})
	return id, nil
}

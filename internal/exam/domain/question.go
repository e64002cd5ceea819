package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "examsim/internal/platform/errors"
)

// Kind describes how many correct options a question carries.
type Kind string

const (
	// KindSingleChoice has exactly one correct option.
	KindSingleChoice Kind = "single_choice"
	// KindMultiChoice has a set of correct options graded by set equality.
	KindMultiChoice Kind = "multi_choice"
)

// Difficulty labels a question for display and filtering.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is one immutable question record.
// Options are addressed by positional index; CorrectAnswers holds zero-based
// indices into Options.
type Question struct {
	ID             int64
	Certification  string
	Domain         string
	Text           string
	Kind           Kind
	Options        []string
	CorrectAnswers []int
	Explanation    string
	Difficulty     Difficulty
	CreatedAt      time.Time
}

// QuestionView is the answer-stripped rendering of a question, safe to hand
// to a test-taker mid-session.
type QuestionView struct {
	ID            int64
	Certification string
	Domain        string
	Text          string
	Kind          Kind
	Options       []string
	Difficulty    Difficulty
}

// View strips correct answers and explanation from a question.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:            q.ID,
		Certification: q.Certification,
		Domain:        q.Domain,
		Text:          q.Text,
		Kind:          q.Kind,
		Options:       q.Options,
		Difficulty:    q.Difficulty,
	}
}

// NewQuestionInput describes a question to author.
type NewQuestionInput struct {
	Certification  string
	Domain         string
	Text           string
	Kind           Kind
	Options        []string
	CorrectAnswers []int
	Explanation    string
	Difficulty     Difficulty
}

// NormalizeNewQuestion trims and validates authoring input, applying the
// medium-difficulty default. Correct-answer representations must already be
// zero-based indices; letter or string-digit keys are converted at the ingest
// boundary, never here.
func NormalizeNewQuestion(input NewQuestionInput) (Question, error) {
	input.Certification = strings.TrimSpace(input.Certification)
	input.Domain = strings.TrimSpace(input.Domain)
	input.Text = strings.TrimSpace(input.Text)

	if input.Certification == "" {
		return Question{}, apperrors.New(apperrors.CodeQuestionEmptyCertification, "certification is required")
	}
	if input.Text == "" {
		return Question{}, apperrors.New(apperrors.CodeQuestionEmptyText, "question text is required")
	}

	switch input.Kind {
	case KindSingleChoice, KindMultiChoice:
	default:
		return Question{}, apperrors.WithMetadata(apperrors.CodeQuestionInvalidKind,
			fmt.Sprintf("unknown question kind %q", input.Kind),
			map[string]string{"kind": string(input.Kind)})
	}

	if input.Difficulty == "" {
		input.Difficulty = DifficultyMedium
	}
	switch input.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return Question{}, apperrors.WithMetadata(apperrors.CodeQuestionInvalidDifficulty,
			fmt.Sprintf("unknown difficulty %q", input.Difficulty),
			map[string]string{"difficulty": string(input.Difficulty)})
	}

	if len(input.Options) == 0 {
		return Question{}, apperrors.New(apperrors.CodeQuestionNoOptions, "at least one option is required")
	}
	for i, option := range input.Options {
		input.Options[i] = strings.TrimSpace(option)
	}

	if len(input.CorrectAnswers) == 0 {
		return Question{}, apperrors.New(apperrors.CodeQuestionNoCorrectOptions, "at least one correct option is required")
	}
	seen := make(map[int]struct{}, len(input.CorrectAnswers))
	for _, index := range input.CorrectAnswers {
		if index < 0 || index >= len(input.Options) {
			return Question{}, apperrors.WithMetadata(apperrors.CodeQuestionCorrectOutOfRange,
				fmt.Sprintf("correct option index %d is out of range", index),
				map[string]string{"index": fmt.Sprintf("%d", index)})
		}
		if _, dup := seen[index]; dup {
			return Question{}, apperrors.WithMetadata(apperrors.CodeQuestionCorrectOutOfRange,
				fmt.Sprintf("correct option index %d is duplicated", index),
				map[string]string{"index": fmt.Sprintf("%d", index)})
		}
		seen[index] = struct{}{}
	}
	if input.Kind == KindSingleChoice && len(input.CorrectAnswers) != 1 {
		return Question{}, apperrors.New(apperrors.CodeQuestionSingleChoiceCorrect,
			"single choice questions require exactly one correct option")
	}

	return Question{
		Certification:  input.Certification,
		Domain:         input.Domain,
		Text:           input.Text,
		Kind:           input.Kind,
		Options:        input.Options,
		CorrectAnswers: input.CorrectAnswers,
		Explanation:    strings.TrimSpace(input.Explanation),
		Difficulty:     input.Difficulty,
	}, nil
}

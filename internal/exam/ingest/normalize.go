package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"examsim/internal/exam/domain"
)

// kindAliases maps legacy question-type spellings onto the canonical kinds.
var kindAliases = map[string]domain.Kind{
	"single_choice":     domain.KindSingleChoice,
	"multiple_choice":   domain.KindSingleChoice,
	"multi_choice":      domain.KindMultiChoice,
	"multiple_response": domain.KindMultiChoice,
}

// NormalizeKind resolves an imported question type, defaulting to single
// choice when unset.
func NormalizeKind(value string) (domain.Kind, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return domain.KindSingleChoice, nil
	}
	kind, ok := kindAliases[trimmed]
	if !ok {
		return "", fmt.Errorf("unknown question type %q", value)
	}
	return kind, nil
}

// ParseAnswerKey resolves one correct-answer key to a zero-based option
// index. Accepted spellings: an option letter ("A" is the first option), a
// zero-based index string ("2"), or a plain integer.
func ParseAnswerKey(value any, optionCount int) (int, error) {
	switch v := value.(type) {
	case string:
		return parseAnswerKeyString(v, optionCount)
	case int:
		return checkAnswerIndex(v, optionCount)
	case int64:
		return checkAnswerIndex(int(v), optionCount)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("answer key %v is not an integer", v)
		}
		return checkAnswerIndex(int(v), optionCount)
	default:
		return 0, fmt.Errorf("answer key %v has unsupported type %T", value, value)
	}
}

func parseAnswerKeyString(value string, optionCount int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("answer key is empty")
	}
	if index, err := strconv.Atoi(trimmed); err == nil {
		return checkAnswerIndex(index, optionCount)
	}
	upper := strings.ToUpper(trimmed)
	if len(upper) == 1 && upper[0] >= 'A' && upper[0] <= 'Z' {
		return checkAnswerIndex(int(upper[0]-'A'), optionCount)
	}
	return 0, fmt.Errorf("answer key %q is not a letter or index", value)
}

func checkAnswerIndex(index, optionCount int) (int, error) {
	if index < 0 || index >= optionCount {
		return 0, fmt.Errorf("answer index %d is out of range for %d options", index, optionCount)
	}
	return index, nil
}

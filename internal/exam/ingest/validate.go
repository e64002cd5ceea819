package ingest

import (
	"fmt"
	"strings"

	"examsim/internal/exam/domain"
)

// Issue captures one problem found while normalizing an import file.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more import issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for import failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("question import validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// Normalize converts an import file into store-ready question inputs. Every
// record is checked: certifications must resolve, answer keys must parse, and
// a question text may appear only once per certification within the file.
func Normalize(file File) ([]domain.NewQuestionInput, error) {
	collector := &issueCollector{}
	if len(file.Questions) == 0 {
		collector.add("questions", "must include at least one entry")
	}

	fileCertification := strings.TrimSpace(file.Certification)
	seenTexts := map[string]struct{}{}
	inputs := make([]domain.NewQuestionInput, 0, len(file.Questions))
	for i, record := range file.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)

		certification := strings.TrimSpace(record.Certification)
		if certification == "" {
			certification = fileCertification
		}
		if certification == "" {
			collector.add(prefix+".certification", "is required")
		}

		text := strings.TrimSpace(record.Text)
		if text == "" {
			collector.add(prefix+".question_text", "is required")
		} else {
			key := certification + "\x00" + strings.ToLower(text)
			if _, exists := seenTexts[key]; exists {
				collector.add(prefix+".question_text", fmt.Sprintf("duplicate question %q", text))
			} else {
				seenTexts[key] = struct{}{}
			}
		}

		kind, err := NormalizeKind(record.Kind)
		if err != nil {
			collector.add(prefix+".question_type", err.Error())
		}

		if len(record.Options) == 0 {
			collector.add(prefix+".options", "must include at least one entry")
		}

		correct := make([]int, 0, len(record.CorrectAnswers))
		if len(record.CorrectAnswers) == 0 {
			collector.add(prefix+".correct_answers", "must include at least one entry")
		} else {
			for keyIndex, key := range record.CorrectAnswers {
				index, err := ParseAnswerKey(key, len(record.Options))
				if err != nil {
					collector.add(fmt.Sprintf("%s.correct_answers[%d]", prefix, keyIndex), err.Error())
					continue
				}
				correct = append(correct, index)
			}
		}

		inputs = append(inputs, domain.NewQuestionInput{
			Certification:  certification,
			Domain:         strings.TrimSpace(record.Domain),
			Text:           text,
			Kind:           kind,
			Options:        record.Options,
			CorrectAnswers: correct,
			Explanation:    strings.TrimSpace(record.Explanation),
			Difficulty:     domain.Difficulty(strings.ToLower(strings.TrimSpace(record.Difficulty))),
		})
	}

	if err := collector.result(); err != nil {
		return nil, err
	}
	return inputs, nil
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "examsim/internal/platform/errors"
)

// PayloadShape tags which historical on-disk structure a payload was stored in.
type PayloadShape int

const (
	PayloadShapeUnknown PayloadShape = iota
	// PayloadShapeIDList is the v1 shape: a bare ordered array of question ids,
	// written at session start.
	PayloadShapeIDList
	// PayloadShapeScored is the v2 shape: an object carrying question_ids and
	// detailed_results, written at submission. Latest format.
	PayloadShapeScored
	// PayloadShapeLegacyFlat is a bare ordered array of detail records with no
	// wrapper, written by an earlier submission format. Read-only.
	PayloadShapeLegacyFlat
)

func (s PayloadShape) String() string {
	switch s {
	case PayloadShapeIDList:
		return "id_list"
	case PayloadShapeScored:
		return "scored"
	case PayloadShapeLegacyFlat:
		return "legacy_flat"
	default:
		return "unknown"
	}
}

// DetailRecord is the per-question result stored after scoring and served by
// the results view without re-touching the question store.
//
// UserAnswerAlias mirrors UserAnswer under the field name downstream consumers
// expect; it is populated on read, never trusted as the stored value unless
// UserAnswer is absent.
type DetailRecord struct {
	QuestionID      int64    `json:"question_id"`
	QuestionText    string   `json:"question_text"`
	Options         []string `json:"options"`
	UserAnswer      []int    `json:"user_answer"`
	UserAnswerAlias []int    `json:"user_answers,omitempty"`
	CorrectAnswers  []int    `json:"correct_answers"`
	IsCorrect       bool     `json:"is_correct"`
	Explanation     string   `json:"explanation"`
	Domain          string   `json:"domain"`
}

// Payload is the canonical in-memory resolution of any stored payload shape.
type Payload struct {
	QuestionIDs []int64
	Details     []DetailRecord
}

type scoredPayload struct {
	QuestionIDs     []int64        `json:"question_ids"`
	DetailedResults []DetailRecord `json:"detailed_results"`
}

// DecodePayload resolves a stored payload into the canonical form, tolerating
// all three historical shapes. The shape is branched on exactly once here;
// callers only ever see the canonical structure.
func DecodePayload(raw string) (Payload, PayloadShape, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return Payload{}, PayloadShapeUnknown, apperrors.New(
			apperrors.CodeSessionInvalidPayloadShape, "session payload is empty")
	}

	switch trimmed[0] {
	case '{':
		var scored scoredPayload
		if err := json.Unmarshal(trimmed, &scored); err != nil {
			return Payload{}, PayloadShapeUnknown, invalidPayload(err)
		}
		// The wrapper object must carry the id list or at least the detail
		// records; a detail-only object derives its ids from the records the
		// same way the flat legacy shape does.
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &keys); err != nil {
			return Payload{}, PayloadShapeUnknown, invalidPayload(err)
		}
		if _, ok := keys["question_ids"]; !ok {
			if _, ok := keys["detailed_results"]; !ok {
				return Payload{}, PayloadShapeUnknown, apperrors.New(
					apperrors.CodeSessionInvalidPayloadShape,
					"payload object carries neither question_ids nor detailed_results")
			}
			ids := make([]int64, 0, len(scored.DetailedResults))
			for _, detail := range scored.DetailedResults {
				ids = append(ids, detail.QuestionID)
			}
			return Payload{
				QuestionIDs: ids,
				Details:     normalizeDetails(scored.DetailedResults),
			}, PayloadShapeScored, nil
		}
		return Payload{
			QuestionIDs: scored.QuestionIDs,
			Details:     normalizeDetails(scored.DetailedResults),
		}, PayloadShapeScored, nil

	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return Payload{}, PayloadShapeUnknown, invalidPayload(err)
		}
		if len(elements) == 0 {
			return Payload{}, PayloadShapeIDList, nil
		}
		if first := bytes.TrimSpace(elements[0]); len(first) > 0 && first[0] == '{' {
			var details []DetailRecord
			if err := json.Unmarshal(trimmed, &details); err != nil {
				return Payload{}, PayloadShapeUnknown, invalidPayload(err)
			}
			ids := make([]int64, 0, len(details))
			for _, detail := range details {
				ids = append(ids, detail.QuestionID)
			}
			return Payload{
				QuestionIDs: ids,
				Details:     normalizeDetails(details),
			}, PayloadShapeLegacyFlat, nil
		}
		var ids []int64
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return Payload{}, PayloadShapeUnknown, invalidPayload(err)
		}
		return Payload{QuestionIDs: ids}, PayloadShapeIDList, nil

	default:
		return Payload{}, PayloadShapeUnknown, apperrors.New(
			apperrors.CodeSessionInvalidPayloadShape, "payload is neither an object nor an array")
	}
}

// EncodeIDListPayload serializes the v1 shape written at session start.
func EncodeIDListPayload(questionIDs []int64) (string, error) {
	if questionIDs == nil {
		questionIDs = []int64{}
	}
	encoded, err := json.Marshal(questionIDs)
	if err != nil {
		return "", fmt.Errorf("marshal id list payload: %w", err)
	}
	return string(encoded), nil
}

// EncodeScoredPayload serializes the v2 shape written at submission. The
// original id list is preserved alongside the detail records so later reads
// stay idempotent.
func EncodeScoredPayload(payload Payload) (string, error) {
	scored := scoredPayload{
		QuestionIDs:     payload.QuestionIDs,
		DetailedResults: payload.Details,
	}
	if scored.QuestionIDs == nil {
		scored.QuestionIDs = []int64{}
	}
	if scored.DetailedResults == nil {
		scored.DetailedResults = []DetailRecord{}
	}
	encoded, err := json.Marshal(scored)
	if err != nil {
		return "", fmt.Errorf("marshal scored payload: %w", err)
	}
	return string(encoded), nil
}

// normalizeDetails reconciles the stored selection field with its alias.
func normalizeDetails(details []DetailRecord) []DetailRecord {
	for i := range details {
		if details[i].UserAnswer == nil && details[i].UserAnswerAlias != nil {
			details[i].UserAnswer = details[i].UserAnswerAlias
		}
		details[i].UserAnswerAlias = details[i].UserAnswer
	}
	return details
}

func invalidPayload(cause error) error {
	return apperrors.Wrap(apperrors.CodeSessionInvalidPayloadShape, "parse session payload", cause)
}

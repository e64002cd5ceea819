package filter

import (
	stderrors "errors"
	"testing"

	apperrors "examsim/internal/platform/errors"
)

func TestParseQuestionFilterEmpty(t *testing.T) {
	condition, err := ParseQuestionFilter("   ")
	if err != nil {
		t.Fatalf("parse empty filter: %v", err)
	}
	if !condition.Empty() {
		t.Fatalf("expected empty condition, got %+v", condition)
	}
}

func TestParseQuestionFilterEquality(t *testing.T) {
	condition, err := ParseQuestionFilter(`difficulty = "hard"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if condition.Clause != "difficulty = ?" {
		t.Fatalf("unexpected clause %q", condition.Clause)
	}
	if len(condition.Params) != 1 || condition.Params[0] != "hard" {
		t.Fatalf("unexpected params %v", condition.Params)
	}
}

func TestParseQuestionFilterMapsQuestionTypeColumn(t *testing.T) {
	condition, err := ParseQuestionFilter(`question_type = "multi_choice"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if condition.Clause != "kind = ?" {
		t.Fatalf("expected question_type mapped to kind column, got %q", condition.Clause)
	}
}

func TestParseQuestionFilterLogical(t *testing.T) {
	condition, err := ParseQuestionFilter(`domain = "Security" AND difficulty != "easy"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if condition.Clause != "(domain = ? AND difficulty != ?)" {
		t.Fatalf("unexpected clause %q", condition.Clause)
	}
	if len(condition.Params) != 2 || condition.Params[0] != "Security" || condition.Params[1] != "easy" {
		t.Fatalf("unexpected params %v", condition.Params)
	}

	condition, err = ParseQuestionFilter(`difficulty = "easy" OR difficulty = "medium"`)
	if err != nil {
		t.Fatalf("parse or filter: %v", err)
	}
	if condition.Clause != "(difficulty = ? OR difficulty = ?)" {
		t.Fatalf("unexpected clause %q", condition.Clause)
	}
}

func TestParseQuestionFilterRejectsUnknownField(t *testing.T) {
	_, err := ParseQuestionFilter(`certification = "CLF-C02"`)
	if err == nil {
		t.Fatal("expected unknown field error")
	}
	if !stderrors.Is(err, apperrors.New(apperrors.CodeFilterInvalid, "")) {
		t.Fatalf("expected filter invalid code, got %v", err)
	}
}

func TestParseQuestionFilterRejectsMalformedExpression(t *testing.T) {
	_, err := ParseQuestionFilter(`difficulty = `)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !stderrors.Is(err, apperrors.New(apperrors.CodeFilterInvalid, "")) {
		t.Fatalf("expected filter invalid code, got %v", err)
	}
}

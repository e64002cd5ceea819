package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"examsim/internal/exam/domain"
	"examsim/internal/exam/filter"
	"examsim/internal/exam/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "examsim.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func testQuestion(certification, text string) domain.Question {
	return domain.Question{
		Certification:  certification,
		Domain:         "Security",
		Text:           text,
		Kind:           domain.KindSingleChoice,
		Options:        []string{"Option A", "Option B", "Option C", "Option D"},
		CorrectAnswers: []int{1},
		Explanation:    "Option B is correct.",
		Difficulty:     domain.DifficultyMedium,
		CreatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestPutAndGetQuestion(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := testQuestion("SAA-C03", "What stops public access to a bucket?")
	id, err := store.PutQuestion(ctx, want)
	if err != nil {
		t.Fatalf("put question: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := store.GetQuestion(ctx, id)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if got.ID != id {
		t.Errorf("expected id %d, got %d", id, got.ID)
	}
	if got.Text != want.Text {
		t.Errorf("expected text %q, got %q", want.Text, got.Text)
	}
	if got.Kind != domain.KindSingleChoice {
		t.Errorf("expected kind %q, got %q", domain.KindSingleChoice, got.Kind)
	}
	if len(got.Options) != 4 {
		t.Errorf("expected 4 options, got %d", len(got.Options))
	}
	if len(got.CorrectAnswers) != 1 || got.CorrectAnswers[0] != 1 {
		t.Errorf("unexpected correct answers %v", got.CorrectAnswers)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("expected created at %v, got %v", want.CreatedAt, got.CreatedAt)
	}
}

func TestGetQuestionNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetQuestion(context.Background(), 4242)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListQuestionsByCertification(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if _, err := store.PutQuestion(ctx, testQuestion("SAA-C03", text)); err != nil {
			t.Fatalf("put question: %v", err)
		}
	}
	other := testQuestion("CLF-C02", "other cert")
	if _, err := store.PutQuestion(ctx, other); err != nil {
		t.Fatalf("put question: %v", err)
	}

	questions, err := store.ListQuestionsByCertification(ctx, "SAA-C03", filter.Condition{})
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if questions[0].Text != "first" || questions[2].Text != "third" {
		t.Errorf("expected insertion order, got %q .. %q", questions[0].Text, questions[2].Text)
	}

	count, err := store.CountQuestionsByCertification(ctx, "SAA-C03")
	if err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestListQuestionsWithFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	networking := testQuestion("SAA-C03", "networking question")
	networking.Domain = "Networking"
	networking.Difficulty = domain.DifficultyHard
	if _, err := store.PutQuestion(ctx, networking); err != nil {
		t.Fatalf("put question: %v", err)
	}
	if _, err := store.PutQuestion(ctx, testQuestion("SAA-C03", "security question")); err != nil {
		t.Fatalf("put question: %v", err)
	}

	condition, err := filter.ParseQuestionFilter(`domain = "Networking" AND difficulty = "hard"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	questions, err := store.ListQuestionsByCertification(ctx, "SAA-C03", condition)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if questions[0].Text != "networking question" {
		t.Errorf("unexpected question %q", questions[0].Text)
	}
}

func testSession(id string) domain.Session {
	return domain.Session{
		ID:             id,
		Certification:  "SAA-C03",
		DisplayName:    "AWS Certified Solutions Architect - Associate",
		TotalQuestions: 3,
		StartedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Payload:        "[1,2,3]",
	}
}

func TestPutAndGetSession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := testSession("sess-round-trip")
	if err := store.PutSession(ctx, want); err != nil {
		t.Fatalf("put session: %v", err)
	}

	got, err := store.GetSession(ctx, want.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("expected id %q, got %q", want.ID, got.ID)
	}
	if got.Payload != want.Payload {
		t.Errorf("expected payload %q, got %q", want.Payload, got.Payload)
	}
	if got.TimeTakenSeconds != nil {
		t.Errorf("expected nil time taken, got %v", *got.TimeTakenSeconds)
	}
	if got.CompletedAt != nil {
		t.Errorf("expected nil completed at, got %v", *got.CompletedAt)
	}
	if !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("expected started at %v, got %v", want.StartedAt, got.StartedAt)
	}
	if got.Status() != domain.StatusInProgress {
		t.Errorf("expected status %v, got %v", domain.StatusInProgress, got.Status())
	}
}

func TestPutSessionDuplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	session := testSession("sess-dup")
	if err := store.PutSession(ctx, session); err != nil {
		t.Fatalf("put session: %v", err)
	}
	if err := store.PutSession(ctx, session); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetSession(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteSessionFirstSubmitWins(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	session := testSession("sess-complete")
	if err := store.PutSession(ctx, session); err != nil {
		t.Fatalf("put session: %v", err)
	}

	input := storage.CompleteSessionInput{
		SessionID:        session.ID,
		CorrectAnswers:   2,
		Score:            700,
		TimeTakenSeconds: 1200,
		CompletedAt:      time.Date(2026, 3, 1, 10, 20, 0, 0, time.UTC),
		Payload:          `{"question_ids":[1,2,3],"detailed_results":[]}`,
	}
	if err := store.CompleteSession(ctx, input); err != nil {
		t.Fatalf("complete session: %v", err)
	}

	got, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Score != 700 || got.CorrectAnswers != 2 {
		t.Errorf("unexpected scored state: score=%d correct=%d", got.Score, got.CorrectAnswers)
	}
	if got.TimeTakenSeconds == nil || *got.TimeTakenSeconds != 1200 {
		t.Errorf("unexpected time taken %v", got.TimeTakenSeconds)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(input.CompletedAt) {
		t.Errorf("unexpected completed at %v", got.CompletedAt)
	}
	if got.Payload != input.Payload {
		t.Errorf("expected payload %q, got %q", input.Payload, got.Payload)
	}

	// Second submit loses the race against the first.
	input.Score = 1000
	if err := store.CompleteSession(ctx, input); !errors.Is(err, storage.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	got, err = store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Score != 700 {
		t.Errorf("expected first submit to stick, got score %d", got.Score)
	}
}

func TestCompleteSessionNotFound(t *testing.T) {
	store := openTestStore(t)

	err := store.CompleteSession(context.Background(), storage.CompleteSessionInput{
		SessionID:   "missing",
		CompletedAt: time.Now().UTC(),
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCertificationStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"q1", "q2"} {
		if _, err := store.PutQuestion(ctx, testQuestion("SAA-C03", text)); err != nil {
			t.Fatalf("put question: %v", err)
		}
	}

	completedAt := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	scores := []struct {
		id       string
		score    int
		complete bool
	}{
		{"sess-pass", 800, true},
		{"sess-fail", 600, true},
		{"sess-open", 0, false},
	}
	for _, sc := range scores {
		session := testSession(sc.id)
		if err := store.PutSession(ctx, session); err != nil {
			t.Fatalf("put session %s: %v", sc.id, err)
		}
		if !sc.complete {
			continue
		}
		err := store.CompleteSession(ctx, storage.CompleteSessionInput{
			SessionID:        sc.id,
			CorrectAnswers:   2,
			Score:            sc.score,
			TimeTakenSeconds: 60,
			CompletedAt:      completedAt,
			Payload:          `{"question_ids":[],"detailed_results":[]}`,
		})
		if err != nil {
			t.Fatalf("complete session %s: %v", sc.id, err)
		}
	}

	stats, err := store.CertificationStats(ctx, "SAA-C03", 700)
	if err != nil {
		t.Fatalf("certification stats: %v", err)
	}
	if stats.QuestionCount != 2 {
		t.Errorf("expected 2 questions, got %d", stats.QuestionCount)
	}
	if stats.SessionCount != 3 {
		t.Errorf("expected 3 sessions, got %d", stats.SessionCount)
	}
	if stats.CompletedCount != 2 {
		t.Errorf("expected 2 completed, got %d", stats.CompletedCount)
	}
	if stats.AverageScore != 700 {
		t.Errorf("expected average 700, got %v", stats.AverageScore)
	}
	if stats.PassRatePercent != 50 {
		t.Errorf("expected pass rate 50, got %v", stats.PassRatePercent)
	}
}

func TestCertificationStatsEmpty(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.CertificationStats(context.Background(), "SAP-C02", 750)
	if err != nil {
		t.Fatalf("certification stats: %v", err)
	}
	if stats.QuestionCount != 0 || stats.SessionCount != 0 {
		t.Errorf("expected zero counts, got %+v", stats)
	}
	if stats.AverageScore != 0 || stats.PassRatePercent != 0 {
		t.Errorf("expected zero rates, got %+v", stats)
	}
}

func TestAppendTelemetryEvent(t *testing.T) {
	store := openTestStore(t)

	err := store.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{
		EventName:     "simulation.session.started",
		Severity:      "info",
		Certification: "SAA-C03",
		SessionID:     "sess-telemetry",
		Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Attributes:    map[string]any{"question_count": 3},
	})
	if err != nil {
		t.Fatalf("append telemetry event: %v", err)
	}
}

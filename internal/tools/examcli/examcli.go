// Package examcli implements the examsim command line: question import and
// authoring, session lifecycle, and statistics against a local store.
package examcli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"google.golang.org/grpc/status"

	"examsim/internal/exam/app"
	"examsim/internal/exam/ingest"
	storagesqlite "examsim/internal/exam/storage/sqlite"
	apperrors "examsim/internal/platform/errors"
)

// Commands accepted as the first positional argument.
const (
	CommandCertifications = "certifications"
	CommandQuestions      = "questions"
	CommandStart          = "start"
	CommandSubmit         = "submit"
	CommandResults        = "results"
	CommandStats          = "stats"
	CommandImport         = "import"
)

// Config holds command configuration.
type Config struct {
	Command          string
	DBPath           string `env:"EXAMSIM_DB_PATH"`
	Certification    string
	DisplayName      string
	QuestionCount    int
	SessionID        string
	Answers          string
	TimeTakenSeconds int
	Filter           string
	File             string
	PassThreshold    int
	JSONOutput       bool
}

// ParseConfig parses flags and the command argument into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "examsim.db")
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to sqlite database (default: EXAMSIM_DB_PATH or data/examsim.db)")
	fs.StringVar(&cfg.Certification, "cert", "", "certification code (e.g. SAA-C03)")
	fs.StringVar(&cfg.DisplayName, "name", "", "certification display name recorded on the session")
	fs.IntVar(&cfg.QuestionCount, "count", 0, "number of questions to draw for a new session")
	fs.StringVar(&cfg.SessionID, "session-id", "", "session identifier")
	fs.StringVar(&cfg.Answers, "answers", "{}", `submitted answers as JSON: {"position":[optionIndex,...]}`)
	fs.IntVar(&cfg.TimeTakenSeconds, "time-taken", 0, "seconds spent on the session")
	fs.StringVar(&cfg.Filter, "filter", "", `question filter (e.g. domain = "Security" AND difficulty = "hard")`)
	fs.StringVar(&cfg.File, "file", "", "question import file (.json or .yaml)")
	fs.IntVar(&cfg.PassThreshold, "threshold", 0, "stats pass threshold (0 = default 700)")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return Config{}, errors.New("missing command: certifications|questions|start|submit|results|stats|import")
	}
	if len(rest) > 1 {
		return Config{}, fmt.Errorf("unexpected arguments after command: %s", strings.Join(rest[1:], " "))
	}
	cfg.Command = rest[0]
	return cfg, nil
}

// Run executes one command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	store, err := storagesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "Error: close store: %v\n", err)
		}
	}()

	engine := app.NewEngine(app.Stores{Questions: store, Sessions: store, Telemetry: store})

	switch cfg.Command {
	case CommandCertifications:
		return runCertifications(ctx, cfg, engine, out)
	case CommandQuestions:
		return runQuestions(ctx, cfg, engine, out)
	case CommandStart:
		return runStart(ctx, cfg, engine, out)
	case CommandSubmit:
		return runSubmit(ctx, cfg, engine, out)
	case CommandResults:
		return runResults(ctx, cfg, engine, out)
	case CommandStats:
		return runStats(ctx, cfg, engine, out)
	case CommandImport:
		return runImport(ctx, cfg, engine, out)
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

// Describe renders an error for the user. Domain errors go through their
// gRPC status so the printed line carries the transport code alongside the
// machine-readable reason; anything else prints as-is.
func Describe(err error) string {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		return err.Error()
	}
	st := status.Convert(domainErr.ToGRPCStatus())
	return fmt.Sprintf("%s (%s): %s", st.Code(), domainErr.Code, st.Message())
}

func runCertifications(ctx context.Context, cfg Config, engine *app.Engine, out io.Writer) error {
	certifications := engine.ListCertifications(ctx)
	if cfg.JSONOutput {
		return writeJSON(out, certifications)
	}
	for _, cert := range certifications {
		fmt.Fprintf(out, "%s\t%s\t%s\tduration=%dm\tquestions=%d\tpassing=%d\n",
			cert.Code, cert.Name, cert.Level, cert.DurationMinutes, cert.QuestionCount, cert.PassingScore)
	}
	return nil
}

func runQuestions(ctx context.Context, cfg Config, engine *app.Engine, out io.Writer) error {
	if cfg.Certification == "" {
		return errors.New("-cert is required")
	}
	questions, err := engine.ListQuestions(ctx, cfg.Certification, cfg.Filter)
	if err != nil {
		return err
	}
	if cfg.JSONOutput {
		return writeJSON(out, questions)
	}
	for _, question := range questions {
		fmt.Fprintf(out, "%d\t[%s/%s]\t%s\n", question.ID, question.Domain, question.Difficulty, question.Text)
	}
	fmt.Fprintf(out, "total=%d\n", len(questions))
	return nil
}

func runStart(ctx context.Context, cfg Config, engine *app.Engine, out io.Writer) error {
	if cfg.Certification == "" {
		return errors.New("-cert is required")
	}
	if cfg.QuestionCount <= 0 {
		return errors.New("-count must be positive")
	}
	started, err := engine.StartSession(ctx, app.StartSessionInput{
		Certification: cfg.Certification,
		DisplayName:   cfg.DisplayName,
		QuestionCount: cfg.QuestionCount,
	})
	if err != nil {
		return err
	}
	if cfg.JSONOutput {
		return writeJSON(out, started)
	}
	fmt.Fprintf(out, "session=%s certification=%s questions=%d duration=%dm\n",
		started.Session.ID, started.Session.Certification, len(started.Questions),
		started.Certification.DurationMinutes)
	for position, question := range started.Questions {
		fmt.Fprintf(out, "%d. %s\n", position, question.Text)
		for optionIndex, option := range question.Options {
			fmt.Fprintf(out, "   %s) %s\n", optionLabel(optionIndex), option)
		}
	}
	return nil
}

func runSubmit(ctx context.Context, cfg Config, engine *app.Engine, out io.Writer) error {
	if cfg.SessionID == "" {
		return errors.New("-session-id is required")
	}
	answers, err := parseAnswers(cfg.Answers)
	if err != nil {
		return err
	}
	result, err := engine.Submit(ctx, app.SubmitInput{
		SessionID:        cfg.SessionID,
		Answers:          answers,
		TimeTakenSeconds: cfg.TimeTakenSeconds,
	})
	if err != nil {
		return err
	}
	if cfg.JSONOutput {
		return writeJSON(out, result)
	}
	fmt.Fprintf(out, "session=%s score=%d correct=%d/%d percentage=%.1f passed=%t\n",
		result.SessionID, result.Score, result.CorrectAnswers, result.TotalQuestions,
		result.Percentage, result.Passed)
	return nil
}

func runResults(ctx context.Context, cfg Config, engine *app.Engine, out io.Writer) error {
	if cfg.SessionID == "" {
		return errors.New("-session-id is required")
	}
	results, err := engine.FetchResults(ctx, cfg.SessionID)
	if err != nil {
		return err
	}
	if cfg.JSONOutput {
		return writeJSON(out, results)
	}
	session := results.Session
	fmt.Fprintf(out, "session=%s status=%s score=%d correct=%d/%d percentage=%.1f passed=%t\n",
		session.ID, session.Status(), session.Score, session.CorrectAnswers,
		session.TotalQuestions, results.Percentage, results.Passed)
	for _, detail := range results.Details {
		marker := "x"
		if detail.IsCorrect {
			marker = "+"
		}
		fmt.Fprintf(out, "%s %d %s answered=%v correct=%v\n",
			marker, detail.QuestionID, detail.QuestionText, detail.UserAnswer, detail.CorrectAnswers)
	}
	return nil
}

func runStats(ctx context.Context, cfg Config, engine *app.Engine, out io.Writer) error {
	if cfg.Certification == "" {
		return errors.New("-cert is required")
	}
	stats, err := engine.Stats(ctx, cfg.Certification, cfg.PassThreshold)
	if err != nil {
		return err
	}
	if cfg.JSONOutput {
		return writeJSON(out, stats)
	}
	fmt.Fprintf(out, "questions=%d sessions=%d completed=%d avg_score=%.1f pass_rate=%.1f%%\n",
		stats.QuestionCount, stats.SessionCount, stats.CompletedCount,
		stats.AverageScore, stats.PassRatePercent)
	return nil
}

func runImport(ctx context.Context, cfg Config, engine *app.Engine, out io.Writer) error {
	if cfg.File == "" {
		return errors.New("-file is required")
	}
	inputs, err := ingest.LoadFile(cfg.File)
	if err != nil {
		return err
	}
	imported := 0
	for _, input := range inputs {
		keys := make([]any, 0, len(input.CorrectAnswers))
		for _, index := range input.CorrectAnswers {
			keys = append(keys, index)
		}
		_, err := engine.AddQuestion(ctx, app.AddQuestionInput{
			Certification:  input.Certification,
			Domain:         input.Domain,
			Text:           input.Text,
			Kind:           string(input.Kind),
			Options:        input.Options,
			CorrectAnswers: keys,
			Explanation:    input.Explanation,
			Difficulty:     string(input.Difficulty),
		})
		if err != nil {
			return fmt.Errorf("import %q: %w", input.Text, err)
		}
		imported++
	}
	fmt.Fprintf(out, "imported=%d file=%s\n", imported, cfg.File)
	return nil
}

// parseAnswers decodes the submitted answer map: JSON object keys are draw
// positions, values the selected option indices.
func parseAnswers(raw string) (map[int][]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[int][]int{}, nil
	}
	var byKey map[string][]int
	if err := json.Unmarshal([]byte(raw), &byKey); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	answers := make(map[int][]int, len(byKey))
	for key, selection := range byKey {
		position, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("parse answers: position %q is not a number", key)
		}
		answers[position] = selection
	}
	return answers, nil
}

func optionLabel(index int) string {
	if index >= 0 && index < 26 {
		return string(rune('A' + index))
	}
	return strconv.Itoa(index)
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// Package app implements the exam simulation engine: question authoring,
// session lifecycle, grading, and aggregate statistics over injected stores.
package app

import (
	"context"
	"log"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"examsim/internal/exam/storage"
	"examsim/internal/telemetry"
)

const tracerName = "examsim/internal/exam/app"

// Stores groups the persistence interfaces the engine depends on.
type Stores struct {
	Questions storage.QuestionStore
	Sessions  storage.SessionStore
	Telemetry storage.TelemetryStore
}

// Engine coordinates simulation operations. Time, identifier generation, and
// randomness are injected so behavior is reproducible under test.
type Engine struct {
	stores  Stores
	emitter *telemetry.Emitter
	clock   func() time.Time
	idGen   func() (string, error)
	rng     *rand.Rand
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithIDGenerator overrides session identifier generation.
func WithIDGenerator(idGen func() (string, error)) Option {
	return func(e *Engine) { e.idGen = idGen }
}

// WithRand overrides the question-draw randomness source.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// NewEngine creates an engine over the provided stores.
func NewEngine(stores Stores, opts ...Option) *Engine {
	engine := &Engine{
		stores:  stores,
		emitter: telemetry.NewEmitter(stores.Telemetry),
		clock:   time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

func (e *Engine) now() time.Time {
	if e.clock == nil {
		return time.Now().UTC()
	}
	return e.clock().UTC()
}

// emitEvent records telemetry without failing the operation that produced it.
func (e *Engine) emitEvent(ctx context.Context, event storage.TelemetryEvent) {
	if err := e.emitter.Emit(ctx, event); err != nil {
		log.Printf("telemetry emit failed event=%s err=%v", event.EventName, err)
	}
}

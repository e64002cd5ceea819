package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"examsim/internal/exam/domain"
	"examsim/internal/exam/storage"
	apperrors "examsim/internal/platform/errors"
)

// Stats aggregates question-bank size and session outcomes for one
// certification. A non-positive threshold falls back to the historical fixed
// default.
func (e *Engine) Stats(ctx context.Context, certification string, passThreshold int) (storage.CertificationStats, error) {
	ctx, span := e.tracer.Start(ctx, "Stats")
	defer span.End()
	span.SetAttributes(attribute.String("certification", certification))

	if passThreshold <= 0 {
		passThreshold = domain.DefaultPassThreshold
	}
	stats, err := e.stores.Sessions.CertificationStats(ctx, certification, passThreshold)
	if err != nil {
		span.RecordError(err)
		return storage.CertificationStats{}, apperrors.Wrap(apperrors.CodeStorageFailure, "certification stats", err)
	}
	return stats, nil
}

package services

import (
	"context"
	"errors"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/finance_tracker/internal/platform/observability"
	"go.opentelemetry.io/otel/attribute"
)

// instrumentedUnit records a span and an outcome counter for every unit.
type instrumentedUnit struct {
	next    portsrepo.UnitOfWork
	metrics *observability.Metrics
	backend string
}

// InstrumentUnitOfWork wraps uow with tracing and, when metrics is set, unit outcome counters.
func InstrumentUnitOfWork(uow portsrepo.UnitOfWork, metrics *observability.Metrics) portsrepo.UnitOfWork {
	backend := "postgres"
	if !uow.Transactional() {
		backend = "memory"
	}
	return &instrumentedUnit{next: uow, metrics: metrics, backend: backend}
}

func (u *instrumentedUnit) Transactional() bool {
	return u.next.Transactional()
}

func (u *instrumentedUnit) Atomic(ctx context.Context, fn func(ctx context.Context, repos portsrepo.RepositoryProvider) error) error {
	ctx, span := tracer.Start(ctx, "ledger.unit")
	span.SetAttributes(attribute.String("ledger.backend", u.backend))

	err := u.next.Atomic(ctx, fn)

	outcome := "commit"
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrConsistency):
		outcome = "consistency_failure"
	default:
		outcome = "abort"
	}
	span.SetAttributes(attribute.String("ledger.outcome", outcome))
	if u.metrics != nil {
		u.metrics.IncrUnit(u.backend, outcome)
	}
	observability.EndSpan(span, err)
	return err
}

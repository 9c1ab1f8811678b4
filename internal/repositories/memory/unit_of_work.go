package memory

import (
	"context"
	"errors"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
)

// undoLog records a compensating step for every write made inside a unit.
type undoLog struct {
	steps []func() error
}

func (l *undoLog) record(step func() error) {
	if l != nil {
		l.steps = append(l.steps, step)
	}
}

// compensate runs the recorded steps newest first. It keeps going after a failed
// step so that as much as possible is undone, and reports every failure.
func (l *undoLog) compensate() error {
	var errs []error
	for i := len(l.steps) - 1; i >= 0; i-- {
		if err := l.steps[i](); err != nil {
			errs = append(errs, err)
		}
	}
	l.steps = nil
	return errors.Join(errs...)
}

// UnitOfWork is the sequential apply + compensating revert fallback.
type UnitOfWork struct {
	store *Store

	// OnCompensate, if set, is called after every compensation attempt.
	OnCompensate func(failed bool)
}

// NewUnitOfWork creates a UnitOfWork over store.
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

var _ portsrepo.UnitOfWork = (*UnitOfWork)(nil)

// Transactional is always false: the store has no rollback of its own.
func (u *UnitOfWork) Transactional() bool {
	return false
}

// Atomic runs fn with exclusive access to the store. On failure every write fn made is
// compensated. A compensation that cannot complete is a consistency failure carrying both errors.
func (u *UnitOfWork) Atomic(ctx context.Context, fn func(ctx context.Context, repos portsrepo.RepositoryProvider) error) error {
	u.store.unitMu.Lock()
	defer u.store.unitMu.Unlock()

	log := &undoLog{}
	err := fn(ctx, u.store.provider(log))
	if err == nil {
		return nil
	}
	cerr := log.compensate()
	if u.OnCompensate != nil {
		u.OnCompensate(cerr != nil)
	}
	if cerr != nil {
		return apperrors.NewConsistencyError("unit failed and compensation did not complete", errors.Join(err, cerr))
	}
	if apperrors.IsDomainError(err) {
		return err
	}
	return apperrors.NewConsistencyError("unit aborted", err)
}

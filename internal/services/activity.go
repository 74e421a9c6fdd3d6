package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/observability"
	"github.com/innometrics/innometrics-backend/internal/store"
)

// maxFindLimit caps single-user activity queries regardless of the
// requested amount.
const maxFindLimit = 1000

// defaultFindLimit is applied when the caller requests nothing.
const defaultFindLimit = 100

// ActivityService orchestrates activity ingestion and querying. Batch
// submissions are all-or-nothing: inserts fan out concurrently and any
// failure triggers compensating deletes of the records that did land.
type ActivityService struct {
	store         store.Store
	log           zerolog.Logger
	insertTimeout time.Duration
}

func NewActivityService(s store.Store, log zerolog.Logger, insertTimeout time.Duration) *ActivityService {
	return &ActivityService{store: s, log: log, insertTimeout: insertTimeout}
}

// Submit inserts a single activity for owner and returns its identifier.
// The single path carries no batching or rollback overhead: if the one
// insert fails, zero records exist.
func (s *ActivityService) Submit(ctx context.Context, owner string, p model.ActivityPayload) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	out, err := s.store.Activities().Insert(ctx, p.Activity(owner))
	if err != nil {
		return "", err
	}
	return out.ActivityID, nil
}

// SubmitBatch inserts every payload for owner concurrently and guarantees
// the batch is all-or-nothing from the caller's point of view. On any
// failure every successful insert is compensated with a best-effort
// delete, so the visible set for this call is either complete or empty.
func (s *ActivityService) SubmitBatch(ctx context.Context, owner string, payloads []model.ActivityPayload) ([]string, error) {
	if len(payloads) == 0 {
		return nil, fmt.Errorf("%w: empty activity batch", model.ErrValidation)
	}
	for i := range payloads {
		if err := payloads[i].Validate(); err != nil {
			return nil, err
		}
	}

	// Inserts are detached from the request's cancellation: once a task
	// is launched it runs to completion, bounded only by the per-insert
	// timeout. Results stay index-aligned with the input so rollback can
	// map successes back to identifiers.
	base := context.WithoutCancel(ctx)
	ids := make([]string, len(payloads))
	errs := make([]error, len(payloads))
	var wg sync.WaitGroup
	for i := range payloads {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			insertCtx, cancel := context.WithTimeout(base, s.insertTimeout)
			defer cancel()
			out, err := s.store.Activities().Insert(insertCtx, payloads[i].Activity(owner))
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = out.ActivityID
		}(i)
	}
	wg.Wait()

	var firstErr error
	for _, err := range errs {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		return ids, nil
	}

	s.rollback(base, owner, ids)
	observability.RecordBatchRollback()
	return nil, fmt.Errorf("batch insert rolled back: %w", firstErr)
}

// rollback issues a compensating delete for every insert that succeeded.
// Delete failures are logged and not escalated: the batch outcome is
// already Failure.
func (s *ActivityService) rollback(ctx context.Context, owner string, ids []string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := s.store.Activities().Delete(ctx, id); err != nil && !errors.Is(err, model.ErrNotFound) {
			observability.RecordRollbackDeleteFailure()
			s.log.Error().Err(err).
				Str("user_id", owner).
				Str("activity_id", id).
				Msg("compensating delete failed during batch rollback")
		}
	}
}

// DeleteActivity removes one record; model.ErrNotFound when absent.
func (s *ActivityService) DeleteActivity(ctx context.Context, activityID string) error {
	return s.store.Activities().Delete(ctx, activityID)
}

// FindActivities queries one user's records with the single-user cap
// applied server-side.
func (s *ActivityService) FindActivities(ctx context.Context, owner string, req model.FindActivitiesRequest) ([]*model.Activity, error) {
	req.OwnerIDs = []string{owner}
	req.Limit = capLimit(req.Limit, maxFindLimit)
	return s.store.Activities().Find(ctx, req)
}

func capLimit(requested, ceiling int) int {
	if requested <= 0 {
		return defaultFindLimit
	}
	if requested > ceiling {
		return ceiling
	}
	return requested
}

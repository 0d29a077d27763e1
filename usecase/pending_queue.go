package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	domainOffline "github.com/savora/savora/domains/offline"
	"github.com/savora/savora/infrastructure/kvstore"
	pkgError "github.com/savora/savora/pkg/error"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const queueKey = "queue"

// queueService is the durable FIFO log of mutations recorded while the
// remote service was unreachable or failing. Every mutation of the queue is
// flushed whole to the local store under the queue mutex, so the queue
// survives restarts with its order intact.
//
// Unlike the caches, a persistence failure while enqueueing is surfaced to
// the caller: a silently dropped queue entry would lose a user action with
// no record of it.
type queueService struct {
	mu         sync.Mutex
	ops        []domainOffline.PendingOperation
	store      kvstore.Store
	maxRetries int
	handlers   []domainOffline.FailureHandler
	now        func() time.Time
}

func NewQueueService(store kvstore.Store, maxRetries int) domainOffline.IQueueUsecase {
	s := &queueService{
		store:      store,
		maxRetries: maxRetries,
		now:        time.Now,
	}
	s.load()
	return s
}

func (s *queueService) load() {
	raw, err := s.store.Get(context.Background(), queueKey)
	if err != nil {
		if err != kvstore.ErrNotFound {
			logrus.WithError(err).Warn("[QUEUE] Failed to read persisted queue, starting empty")
		}
		return
	}
	if err := json.Unmarshal(raw, &s.ops); err != nil {
		logrus.WithError(err).Error("[QUEUE] Persisted queue is corrupt, starting empty")
		s.ops = nil
		return
	}
	if len(s.ops) > 0 {
		logrus.Infof("[QUEUE] Restored %d pending operations", len(s.ops))
	}
}

func (s *queueService) Enqueue(opType domainOffline.OperationType, payload any) (domainOffline.PendingOperation, error) {
	if !opType.Valid() {
		return domainOffline.PendingOperation{}, pkgError.ValidationError(fmt.Sprintf("type: unknown operation type %q.", opType))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return domainOffline.PendingOperation{}, pkgError.ValidationError(fmt.Sprintf("payload: not serializable: %v.", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	op := domainOffline.PendingOperation{
		ID:         uuid.NewString(),
		Type:       opType,
		Payload:    raw,
		EnqueuedAt: s.now(),
		RetryCount: 0,
	}
	s.ops = append(s.ops, op)

	if err := s.persistLocked(); err != nil {
		// Roll back: an entry that never hit the durable store must not
		// pretend to be queued.
		s.ops = s.ops[:len(s.ops)-1]
		logrus.WithError(err).Errorf("[QUEUE] Failed to persist %s operation, rejecting it", opType)
		return domainOffline.PendingOperation{}, pkgError.StorageFailureError(fmt.Sprintf("enqueue %s: %v", opType, err))
	}

	logrus.Infof("[QUEUE] Enqueued %s operation %s (%d pending)", op.Type, op.ID, len(s.ops))
	return op, nil
}

// Drain replays the queue snapshot in enqueue order. Earlier user actions
// replay before later ones so a later unfavorite cannot race ahead of the
// favorite it undoes. Operations enqueued while a drain runs are left for
// the next cycle.
func (s *queueService) Drain(ctx context.Context, replay domainOffline.ReplayFunc) domainOffline.DrainReport {
	s.mu.Lock()
	snapshot := make([]domainOffline.PendingOperation, len(s.ops))
	copy(snapshot, s.ops)
	s.mu.Unlock()

	var report domainOffline.DrainReport
	for _, op := range snapshot {
		// A dying context ends the drain; untried operations keep their
		// retry counts and wait for the next cycle.
		if err := ctx.Err(); err != nil {
			logrus.Debugf("[QUEUE] Drain stopped with %d operations left: %v", len(snapshot)-report.Attempted, err)
			break
		}
		report.Attempted++
		if err := replay(ctx, op); err != nil {
			s.recordFailure(op, err, &report)
			continue
		}
		s.remove(op.ID)
		report.Succeeded++
		logrus.Debugf("[QUEUE] Replayed %s operation %s", op.Type, op.ID)
	}
	return report
}

func (s *queueService) recordFailure(op domainOffline.PendingOperation, cause error, report *domainOffline.DrainReport) {
	// Cancellation means the drain was interrupted, not that the remote
	// refused the operation. It must not cost a retry.
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		report.Retried++
		logrus.Debugf("[QUEUE] Replay of %s operation %s interrupted: %v", op.Type, op.ID, cause)
		return
	}

	s.mu.Lock()

	idx := s.indexLocked(op.ID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.ops[idx].RetryCount++
	retries := s.ops[idx].RetryCount

	if retries < s.maxRetries {
		if err := s.persistLocked(); err != nil {
			logrus.WithError(err).Warn("[QUEUE] Failed to persist retry count")
		}
		s.mu.Unlock()
		report.Retried++
		logrus.Warnf("[QUEUE] Replay of %s operation %s failed (attempt %d/%d): %v",
			op.Type, op.ID, retries, s.maxRetries, cause)
		return
	}

	// Retry budget exhausted: drop the operation and report it exactly once.
	dropped := s.ops[idx]
	s.ops = append(s.ops[:idx], s.ops[idx+1:]...)
	if err := s.persistLocked(); err != nil {
		logrus.WithError(err).Warn("[QUEUE] Failed to persist queue after drop")
	}
	handlers := make([]domainOffline.FailureHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	report.Dropped++
	failure := domainOffline.PermanentFailure{
		Operation: dropped,
		Reason:    pkgError.RetryExhaustedError(fmt.Sprintf("%s operation failed %d times: %v", dropped.Type, retries, cause)).Error(),
		FailedAt:  s.now(),
	}
	logrus.Errorf("[QUEUE] Dropping %s operation %s after %d failed attempts: %v",
		dropped.Type, dropped.ID, retries, cause)
	for _, h := range handlers {
		h(failure)
	}
}

func (s *queueService) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return
	}
	s.ops = append(s.ops[:idx], s.ops[idx+1:]...)
	if err := s.persistLocked(); err != nil {
		logrus.WithError(err).Warn("[QUEUE] Failed to persist queue after removal")
	}
}

func (s *queueService) indexLocked(id string) int {
	for i, op := range s.ops {
		if op.ID == id {
			return i
		}
	}
	return -1
}

func (s *queueService) Snapshot() []domainOffline.PendingOperation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domainOffline.PendingOperation, len(s.ops))
	copy(out, s.ops)
	return out
}

func (s *queueService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ops)
}

func (s *queueService) OnPermanentFailure(h domainOffline.FailureHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// Clear drops every pending operation. Only used by the full storage reset.
func (s *queueService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops = nil
	if err := s.store.Delete(context.Background(), queueKey); err != nil {
		logrus.WithError(err).Warn("[QUEUE] Failed to delete persisted queue")
	}
}

func (s *queueService) persistLocked() error {
	raw, err := json.Marshal(s.ops)
	if err != nil {
		return err
	}
	return s.store.Set(context.Background(), queueKey, raw)
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/queuepro/internal/model"
	"github.com/iliyamo/queuepro/internal/ticketing"
)

// MemoryTokenRepo is an in-process queue store.  All reads return copies.
type MemoryTokenRepo struct {
	mu       sync.RWMutex
	seq      uint64
	byID     map[string]model.Token
	byNumber map[string]string
}

func NewMemoryTokenRepo() *MemoryTokenRepo {
	return &MemoryTokenRepo{
		byID:     make(map[string]model.Token),
		byNumber: make(map[string]string),
	}
}

var _ ticketing.Store = (*MemoryTokenRepo)(nil)

func cloneToken(t model.Token) model.Token {
	if t.ServedAt != nil {
		at := *t.ServedAt
		t.ServedAt = &at
	}
	return t
}

func (r *MemoryTokenRepo) Create(_ context.Context, t *model.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byNumber[t.TokenNumber]; taken {
		return ticketing.ErrDuplicateTokenNumber
	}
	r.seq++
	t.Seq = r.seq
	t.Status = model.StatusWaiting
	r.byID[t.ID] = cloneToken(*t)
	r.byNumber[t.TokenNumber] = t.ID
	return nil
}

func (r *MemoryTokenRepo) FindByID(_ context.Context, id string) (model.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return model.Token{}, ticketing.ErrNotFound
	}
	return cloneToken(t), nil
}

func (r *MemoryTokenRepo) FindByNumber(ctx context.Context, number string) (model.Token, error) {
	r.mu.RLock()
	id, ok := r.byNumber[number]
	r.mu.RUnlock()
	if !ok {
		return model.Token{}, ticketing.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryTokenRepo) LatestSince(_ context.Context, branch, serviceID string, since time.Time) (model.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		latest model.Token
		found  bool
	)
	for _, t := range r.byID {
		if t.Branch != branch || t.ServiceID != serviceID || t.CreatedAt.Before(since) {
			continue
		}
		if !found || latest.Before(t) {
			latest, found = t, true
		}
	}
	if !found {
		return model.Token{}, ticketing.ErrNotFound
	}
	return cloneToken(latest), nil
}

func (r *MemoryTokenRepo) ListWaiting(_ context.Context, branch, serviceID string) ([]model.Token, error) {
	return r.collect(func(t model.Token) bool {
		return t.Branch == branch && t.ServiceID == serviceID && t.IsWaiting()
	}, false), nil
}

func (r *MemoryTokenRepo) ListScope(_ context.Context, branch, serviceID string) ([]model.Token, error) {
	return r.collect(func(t model.Token) bool {
		return t.Branch == branch && t.ServiceID == serviceID
	}, false), nil
}

func (r *MemoryTokenRepo) ListByOwner(_ context.Context, ownerID uint64) ([]model.Token, error) {
	return r.collect(func(t model.Token) bool { return t.OwnerID == ownerID }, true), nil
}

func (r *MemoryTokenRepo) collect(keep func(model.Token) bool, newestFirst bool) []model.Token {
	r.mu.RLock()
	out := make([]model.Token, 0)
	for _, t := range r.byID {
		if keep(t) {
			out = append(out, cloneToken(t))
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[j].Before(out[i])
		}
		return out[i].Before(out[j])
	})
	return out
}

func (r *MemoryTokenRepo) MarkServed(_ context.Context, id string, servedAt time.Time) (model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return model.Token{}, ticketing.ErrNotFound
	}
	if !t.IsWaiting() {
		return model.Token{}, ticketing.ErrAlreadyTerminal
	}
	t.Status = model.StatusServed
	at := servedAt
	t.ServedAt = &at
	r.byID[id] = t
	return cloneToken(t), nil
}

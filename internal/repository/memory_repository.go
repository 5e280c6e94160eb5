package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/queuepro/internal/model"
	"github.com/iliyamo/queuepro/internal/utils"
)

// MemoryUserRepo is the in-process counterpart of UserRepo, used when
// STORE_DRIVER=memory.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	nextID  uint64
	byID    map[uint64]model.User
	byEmail map[string]uint64
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byID: make(map[uint64]model.User), byEmail: make(map[string]uint64)}
}

func (r *MemoryUserRepo) Create(_ context.Context, name, email, password, role string, cost int) (uint64, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[email]; taken {
		return 0, ErrEmailExists
	}
	r.nextID++
	now := time.Now().UTC()
	u := model.User{ID: r.nextID, Name: name, Email: email, PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	return u.ID, nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

type memorySession struct {
	userID  uint64
	expires time.Time
	revoked bool
}

// MemorySessionRepo is the in-process counterpart of SessionRepo.
type MemorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]memorySession)}
}

func (r *MemorySessionRepo) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[tokenHash] = memorySession{userID: userID, expires: exp}
	return nil
}

func (r *MemorySessionRepo) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if !ok || s.revoked || time.Now().UTC().After(s.expires) {
		return 0, ErrInvalidSession
	}
	return s.userID, nil
}

func (r *MemorySessionRepo) RevokeByHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[tokenHash]; ok {
		s.revoked = true
		r.sessions[tokenHash] = s
	}
	return nil
}

func (r *MemorySessionRepo) RevokeAllForUser(_ context.Context, userID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, s := range r.sessions {
		if s.userID == userID {
			s.revoked = true
			r.sessions[h] = s
		}
	}
	return nil
}

// MemoryAppointmentRepo is the in-process counterpart of AppointmentRepo.
type MemoryAppointmentRepo struct {
	mu    sync.RWMutex
	items []model.Appointment
}

func NewMemoryAppointmentRepo() *MemoryAppointmentRepo { return &MemoryAppointmentRepo{} }

func (r *MemoryAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uint64(len(r.items) + 1)
	r.items = append(r.items, *a)
	return nil
}

func (r *MemoryAppointmentRepo) ListByOwner(_ context.Context, ownerID uint64) ([]model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Appointment, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].OwnerID == ownerID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

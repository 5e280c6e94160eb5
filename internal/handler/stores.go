package handler

import (
	"context"
	"time"

	"github.com/iliyamo/queuepro/internal/model"
)

// UserStore is satisfied by repository.UserRepo and MemoryUserRepo.
type UserStore interface {
	Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// SessionStore is satisfied by repository.SessionRepo and MemorySessionRepo.
type SessionStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AppointmentStore is satisfied by repository.AppointmentRepo and
// MemoryAppointmentRepo.
type AppointmentStore interface {
	Create(ctx context.Context, a *model.Appointment) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Appointment, error)
}

// storeTimeout bounds the store work of one request.
const storeTimeout = 5 * time.Second

package ticketing

import (
	"context"
	"time"

	"github.com/iliyamo/queuepro/internal/model"
)

// Store is the durable, ordered collection of tokens.  It is the only
// place token fields are written: Create inserts and MarkServed performs
// the single allowed transition.
//
// List methods return tokens ordered by (CreatedAt, Seq) ascending unless
// stated otherwise.  Implementations return ErrNotFound,
// ErrDuplicateTokenNumber and ErrAlreadyTerminal (possibly wrapped).
type Store interface {
	// Create inserts t as waiting and fills in t.Seq.
	Create(ctx context.Context, t *model.Token) error
	FindByID(ctx context.Context, id string) (model.Token, error)
	FindByNumber(ctx context.Context, number string) (model.Token, error)
	// LatestSince returns the newest token of the scope created at or
	// after since.
	LatestSince(ctx context.Context, branch, serviceID string, since time.Time) (model.Token, error)
	ListWaiting(ctx context.Context, branch, serviceID string) ([]model.Token, error)
	// ListScope returns every token of the scope regardless of status.
	ListScope(ctx context.Context, branch, serviceID string) ([]model.Token, error)
	// ListByOwner returns the owner's tokens, newest first.
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Token, error)
	// MarkServed moves a waiting token to served as one compare-and-set.
	MarkServed(ctx context.Context, id string, servedAt time.Time) (model.Token, error)
}

package model

import "time"

// Token statuses.  A token starts WAITING and moves at most once, to
// SERVED.  CANCELLED is a valid stored value that no operation produces
// yet.
const (
	StatusWaiting   = "waiting"
	StatusServed    = "served"
	StatusCancelled = "cancelled"
)

// Token is one user's place in a (branch, service) queue.  It mirrors a
// row of the `queue_tokens` table.  OwnerName, OwnerEmail and ServiceName
// are copies taken when the token is issued and are display-only; they
// are not refreshed when the user or catalog changes.
//
// Fields:
//  ID          – opaque UUID assigned at creation.
//  Seq         – store-assigned insertion counter, breaks createdAt ties.
//  TokenNumber – human-readable number, unique across the system.
//  OwnerID     – user that requested the token.
//  Branch      – hospital or bank.
//  ServiceID   – service key within the branch catalog.
//  Status      – waiting, served or cancelled.
//  CreatedAt   – queue ordering key.
//  ServedAt    – set exactly once when the token is served.
type Token struct {
	ID          string     `json:"id"`                  // queue_tokens.id
	Seq         uint64     `json:"-"`                   // queue_tokens.seq
	TokenNumber string     `json:"token_number"`        // queue_tokens.token_number
	OwnerID     uint64     `json:"owner_id"`            // queue_tokens.owner_id
	OwnerName   string     `json:"owner_name"`          // queue_tokens.owner_name
	OwnerEmail  string     `json:"owner_email"`         // queue_tokens.owner_email
	Branch      string     `json:"branch"`              // queue_tokens.branch
	ServiceID   string     `json:"service_id"`          // queue_tokens.service_id
	ServiceName string     `json:"service_name"`        // queue_tokens.service_name
	Status      string     `json:"status"`              // queue_tokens.status
	CreatedAt   time.Time  `json:"created_at"`          // queue_tokens.created_at
	ServedAt    *time.Time `json:"served_at,omitempty"` // queue_tokens.served_at (nullable)
}

// IsWaiting reports whether the token still holds a place in its queue.
func (t Token) IsWaiting() bool { return t.Status == StatusWaiting }

// Before reports whether t was queued ahead of o.  Tokens are ordered by
// CreatedAt, then by insertion order, then by ID.
func (t Token) Before(o Token) bool {
	if !t.CreatedAt.Equal(o.CreatedAt) {
		return t.CreatedAt.Before(o.CreatedAt)
	}
	if t.Seq != o.Seq {
		return t.Seq < o.Seq
	}
	return t.ID < o.ID
}

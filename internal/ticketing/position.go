package ticketing

import (
	"time"

	"github.com/iliyamo/queuepro/internal/model"
)

// DefaultPerToken is the service time assumed for each token ahead.
const DefaultPerToken = 10 * time.Minute

// QueueEntry is a waiting token's rank in its scope.
type QueueEntry struct {
	TokenNumber   string        `json:"token_number"`
	Position      int           `json:"position"`
	EstimatedWait time.Duration `json:"-"`
	WaitMinutes   int           `json:"estimated_wait_minutes"`
}

// PositionOf ranks t within the waiting snapshot of its scope: one plus
// the number of waiting tokens queued strictly ahead of it.  A token that
// is not waiting, or missing from the snapshot, has position 0.
func PositionOf(t model.Token, waiting []model.Token, per time.Duration) (int, time.Duration) {
	if !t.IsWaiting() {
		return 0, 0
	}
	ahead, present := 0, false
	for _, w := range waiting {
		if !w.IsWaiting() {
			continue
		}
		if w.ID == t.ID {
			present = true
			continue
		}
		if w.Before(t) {
			ahead++
		}
	}
	if !present {
		return 0, 0
	}
	pos := ahead + 1
	return pos, time.Duration(pos) * per
}

// RankWaiting ranks every waiting token of an ordered snapshot.
func RankWaiting(waiting []model.Token, per time.Duration) []QueueEntry {
	out := make([]QueueEntry, 0, len(waiting))
	for _, w := range waiting {
		if !w.IsWaiting() {
			continue
		}
		pos := len(out) + 1
		out = append(out, newEntry(w.TokenNumber, pos, per))
	}
	return out
}

func newEntry(number string, pos int, per time.Duration) QueueEntry {
	wait := time.Duration(pos) * per
	return QueueEntry{
		TokenNumber:   number,
		Position:      pos,
		EstimatedWait: wait,
		WaitMinutes:   int(wait / time.Minute),
	}
}

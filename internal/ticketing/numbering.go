package ticketing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/iliyamo/queuepro/internal/catalog"
)

// tokenNumberPattern captures the sequence of a number such as
// HOPD007-25122024.  Sequences longer than three digits are accepted.
var tokenNumberPattern = regexp.MustCompile(`^[A-Z]*(\d{3,})-\d{8}$`)

// Numberer computes the next token number of a (branch, service, day)
// scope from the latest token already stored.  It never writes; the
// store's uniqueness constraint settles races between callers.
type Numberer struct {
	store   Store
	catalog *catalog.Catalog
}

func NewNumberer(store Store, cat *catalog.Catalog) *Numberer {
	return &Numberer{store: store, catalog: cat}
}

// Next returns the number the next token of the scope should carry.  The
// day boundary is midnight of now in now's location.
func (n *Numberer) Next(ctx context.Context, branch, serviceID string, now time.Time) (string, error) {
	b, _, ok := n.catalog.Lookup(branch, serviceID)
	if !ok {
		return "", ErrInvalidScope
	}
	seq := 1
	last, err := n.store.LatestSince(ctx, branch, serviceID, StartOfDay(now))
	switch {
	case err == nil:
		if prev, ok := ParseSequence(last.TokenNumber); ok {
			seq = prev + 1
		}
	case errors.Is(err, ErrNotFound):
	default:
		return "", fmt.Errorf("latest token: %w", err)
	}
	return FormatNumber(b.Prefix, serviceID, seq, now), nil
}

// FormatNumber renders {prefix}{short}{seq:03}-{DDMMYYYY}.
func FormatNumber(prefix, serviceID string, seq int, day time.Time) string {
	return fmt.Sprintf("%s%s%03d-%s", prefix, catalog.ShortCode(serviceID), seq, day.Format("02012006"))
}

// ParseSequence extracts the numeric sequence from a token number.
func ParseSequence(number string) (int, bool) {
	m := tokenNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// StartOfDay returns local midnight of t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

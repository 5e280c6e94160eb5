package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queuepro/internal/catalog"
	"github.com/iliyamo/queuepro/internal/model"
)

// latestStore answers LatestSince only.
type latestStore struct {
	Store
	latest    model.Token
	err       error
	gotSince  time.Time
	gotBranch string
}

func (s *latestStore) LatestSince(_ context.Context, branch, _ string, since time.Time) (model.Token, error) {
	s.gotSince, s.gotBranch = since, branch
	return s.latest, s.err
}

func TestFormatNumber(t *testing.T) {
	day := time.Date(2024, 12, 25, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "HOPD007-25122024", FormatNumber("H", "opd", 7, day))
	assert.Equal(t, "BCAS012-25122024", FormatNumber("B", "cash-deposit", 12, day))
	assert.Equal(t, "BLOA1000-25122024", FormatNumber("B", "loan-inquiry", 1000, day))
}

func TestParseSequence(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"HOPD007-25122024", 7, true},
		{"BCAS120-01012025", 120, true},
		{"HOPD1000-25122024", 1000, true},
		{"HOPD07-25122024", 0, false},
		{"HOPD007", 0, false},
		{"garbage", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseSequence(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestStartOfDayKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2024, 12, 25, 1, 30, 0, 0, loc)
	got := StartOfDay(now)
	assert.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestNumbererNext(t *testing.T) {
	now := time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC)
	cat := catalog.Default()

	t.Run("first of the day", func(t *testing.T) {
		s := &latestStore{err: ErrNotFound}
		got, err := NewNumberer(s, cat).Next(context.Background(), "hospital", "opd", now)
		require.NoError(t, err)
		assert.Equal(t, "HOPD001-25122024", got)
		assert.Equal(t, StartOfDay(now), s.gotSince)
	})

	t.Run("follows latest", func(t *testing.T) {
		s := &latestStore{latest: model.Token{TokenNumber: "HOPD006-25122024"}}
		got, err := NewNumberer(s, cat).Next(context.Background(), "hospital", "opd", now)
		require.NoError(t, err)
		assert.Equal(t, "HOPD007-25122024", got)
	})

	t.Run("unparseable latest restarts", func(t *testing.T) {
		s := &latestStore{latest: model.Token{TokenNumber: "legacy-7"}}
		got, err := NewNumberer(s, cat).Next(context.Background(), "hospital", "opd", now)
		require.NoError(t, err)
		assert.Equal(t, "HOPD001-25122024", got)
	})

	t.Run("unknown scope", func(t *testing.T) {
		s := &latestStore{err: ErrNotFound}
		_, err := NewNumberer(s, cat).Next(context.Background(), "hospital", "cash-deposit", now)
		assert.ErrorIs(t, err, ErrInvalidScope)
		assert.Empty(t, s.gotBranch)
	})

	t.Run("store failure", func(t *testing.T) {
		s := &latestStore{err: assert.AnError}
		_, err := NewNumberer(s, cat).Next(context.Background(), "bank", "investment", now)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queuepro/internal/model"
	"github.com/iliyamo/queuepro/internal/ticketing"
)

var tokenCols = []string{"seq", "id", "token_number", "owner_id", "owner_name", "owner_email",
	"branch", "service_id", "service_name", "status", "created_at", "served_at"}

func newMockTokenRepo(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func tokenRow(seq int64, id, number, status string, created time.Time, served any) *sqlmock.Rows {
	return sqlmock.NewRows(tokenCols).AddRow(seq, id, number, int64(7), "Ada", "ada@example.com",
		"hospital", "opd", "OPD (Out Patient Department)", status, created, served)
}

func TestTokenRepoCreate(t *testing.T) {
	repo, mock := newMockTokenRepo(t)
	created := time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO queue_tokens")).
		WithArgs("tok-1", "HOPD001-25122024", uint64(7), "Ada", "ada@example.com",
			"hospital", "opd", "OPD", model.StatusWaiting, created).
		WillReturnResult(sqlmock.NewResult(42, 1))

	tok := &model.Token{
		ID: "tok-1", TokenNumber: "HOPD001-25122024", OwnerID: 7, OwnerName: "Ada",
		OwnerEmail: "ada@example.com", Branch: "hospital", ServiceID: "opd", ServiceName: "OPD",
		CreatedAt: created,
	}
	require.NoError(t, repo.Create(context.Background(), tok))
	assert.Equal(t, uint64(42), tok.Seq)
	assert.Equal(t, model.StatusWaiting, tok.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoCreateDuplicateNumber(t *testing.T) {
	repo, mock := newMockTokenRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO queue_tokens")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'HOPD001-25122024'"})

	err := repo.Create(context.Background(), &model.Token{ID: "tok-1", TokenNumber: "HOPD001-25122024"})
	assert.ErrorIs(t, err, ticketing.ErrDuplicateTokenNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoFindByNumberMissing(t *testing.T) {
	repo, mock := newMockTokenRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM queue_tokens WHERE token_number=?")).
		WithArgs("HOPD404-25122024").
		WillReturnRows(sqlmock.NewRows(tokenCols))

	_, err := repo.FindByNumber(context.Background(), "HOPD404-25122024")
	assert.ErrorIs(t, err, ticketing.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoLatestSince(t *testing.T) {
	repo, mock := newMockTokenRepo(t)
	since := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
	created := since.Add(3 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, seq DESC LIMIT 1")).
		WithArgs("hospital", "opd", since).
		WillReturnRows(tokenRow(9, "tok-9", "HOPD003-25122024", model.StatusWaiting, created, nil))

	tok, err := repo.LatestSince(context.Background(), "hospital", "opd", since)
	require.NoError(t, err)
	assert.Equal(t, "HOPD003-25122024", tok.TokenNumber)
	assert.Equal(t, uint64(9), tok.Seq)
	assert.Nil(t, tok.ServedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoListWaitingOrdered(t *testing.T) {
	repo, mock := newMockTokenRepo(t)
	created := time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(tokenCols).
		AddRow(int64(1), "a", "HOPD001-25122024", int64(1), "A", "a@x", "hospital", "opd", "OPD", "waiting", created, nil).
		AddRow(int64(2), "b", "HOPD002-25122024", int64(2), "B", "b@x", "hospital", "opd", "OPD", "waiting", created, nil)
	mock.ExpectQuery(regexp.QuoteMeta("status='waiting' ORDER BY created_at ASC, seq ASC")).
		WithArgs("hospital", "opd").
		WillReturnRows(rows)

	list, err := repo.ListWaiting(context.Background(), "hospital", "opd")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoMarkServed(t *testing.T) {
	created := time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)
	servedAt := created.Add(20 * time.Minute)

	t.Run("waiting token is served", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE queue_tokens SET status='served', served_at=? WHERE id=? AND status='waiting'")).
			WithArgs(servedAt, "tok-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("FROM queue_tokens WHERE id=?")).
			WithArgs("tok-1").
			WillReturnRows(tokenRow(1, "tok-1", "HOPD001-25122024", model.StatusServed, created, servedAt))

		tok, err := repo.MarkServed(context.Background(), "tok-1", servedAt)
		require.NoError(t, err)
		assert.Equal(t, model.StatusServed, tok.Status)
		require.NotNil(t, tok.ServedAt)
		assert.True(t, tok.ServedAt.Equal(servedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("served token is terminal", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE queue_tokens")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("FROM queue_tokens WHERE id=?")).
			WillReturnRows(tokenRow(1, "tok-1", "HOPD001-25122024", model.StatusServed, created, servedAt))

		_, err := repo.MarkServed(context.Background(), "tok-1", servedAt.Add(time.Minute))
		assert.ErrorIs(t, err, ticketing.ErrAlreadyTerminal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing token", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE queue_tokens")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("FROM queue_tokens WHERE id=?")).
			WillReturnRows(sqlmock.NewRows(tokenCols))

		_, err := repo.MarkServed(context.Background(), "nope", servedAt)
		assert.ErrorIs(t, err, ticketing.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

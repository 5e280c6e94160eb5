package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/queuepro/internal/model"
	"github.com/iliyamo/queuepro/internal/ticketing"
)

const tokenColumns = "seq,id,token_number,owner_id,owner_name,owner_email,branch,service_id,service_name,status,created_at,served_at"

// TokenRepo is the MySQL queue store.  The unique key on token_number
// rejects concurrent duplicates and the AUTO_INCREMENT seq column records
// insertion order.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

var _ ticketing.Store = (*TokenRepo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (model.Token, error) {
	var (
		t        model.Token
		servedAt sql.NullTime
	)
	err := row.Scan(&t.Seq, &t.ID, &t.TokenNumber, &t.OwnerID, &t.OwnerName, &t.OwnerEmail,
		&t.Branch, &t.ServiceID, &t.ServiceName, &t.Status, &t.CreatedAt, &servedAt)
	if err != nil {
		return model.Token{}, err
	}
	if servedAt.Valid {
		at := servedAt.Time
		t.ServedAt = &at
	}
	return t, nil
}

// Create inserts t as a waiting token and sets t.Seq.
func (r *TokenRepo) Create(ctx context.Context, t *model.Token) error {
	t.Status = model.StatusWaiting
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO queue_tokens
		 (id, token_number, owner_id, owner_name, owner_email, branch, service_id, service_name, status, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.TokenNumber, t.OwnerID, t.OwnerName, t.OwnerEmail,
		t.Branch, t.ServiceID, t.ServiceName, t.Status, t.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ticketing.ErrDuplicateTokenNumber
		}
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.Seq = uint64(seq)
	return nil
}

func (r *TokenRepo) findOne(ctx context.Context, where string, arg any) (model.Token, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+tokenColumns+" FROM queue_tokens WHERE "+where+" LIMIT 1", arg)
	t, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Token{}, ticketing.ErrNotFound
	}
	return t, err
}

func (r *TokenRepo) FindByID(ctx context.Context, id string) (model.Token, error) {
	return r.findOne(ctx, "id=?", id)
}

func (r *TokenRepo) FindByNumber(ctx context.Context, number string) (model.Token, error) {
	return r.findOne(ctx, "token_number=?", number)
}

// LatestSince returns the newest token of the scope created at or after since.
func (r *TokenRepo) LatestSince(ctx context.Context, branch, serviceID string, since time.Time) (model.Token, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+tokenColumns+` FROM queue_tokens
		 WHERE branch=? AND service_id=? AND created_at>=?
		 ORDER BY created_at DESC, seq DESC LIMIT 1`,
		branch, serviceID, since)
	t, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Token{}, ticketing.ErrNotFound
	}
	return t, err
}

func (r *TokenRepo) ListWaiting(ctx context.Context, branch, serviceID string) ([]model.Token, error) {
	return r.list(ctx,
		"SELECT "+tokenColumns+` FROM queue_tokens
		 WHERE branch=? AND service_id=? AND status='waiting'
		 ORDER BY created_at ASC, seq ASC`,
		branch, serviceID)
}

func (r *TokenRepo) ListScope(ctx context.Context, branch, serviceID string) ([]model.Token, error) {
	return r.list(ctx,
		"SELECT "+tokenColumns+` FROM queue_tokens
		 WHERE branch=? AND service_id=?
		 ORDER BY created_at ASC, seq ASC`,
		branch, serviceID)
}

// ListByOwner returns the owner's tokens newest first.
func (r *TokenRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Token, error) {
	return r.list(ctx,
		"SELECT "+tokenColumns+` FROM queue_tokens
		 WHERE owner_id=?
		 ORDER BY created_at DESC, seq DESC`,
		ownerID)
}

func (r *TokenRepo) list(ctx context.Context, query string, args ...any) ([]model.Token, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Token, 0)
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkServed flips a waiting token to served in a single conditional
// UPDATE.  When no row changes, a follow-up read tells a missing token
// from one that is already terminal.
func (r *TokenRepo) MarkServed(ctx context.Context, id string, servedAt time.Time) (model.Token, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE queue_tokens SET status='served', served_at=? WHERE id=? AND status='waiting'",
		servedAt, id)
	if err != nil {
		return model.Token{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Token{}, err
	}
	t, err := r.FindByID(ctx, id)
	if err != nil {
		return model.Token{}, err
	}
	if n == 0 {
		return model.Token{}, fmt.Errorf("token %s is %s: %w", t.TokenNumber, t.Status, ticketing.ErrAlreadyTerminal)
	}
	return t, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/queuepro/internal/model"
)

type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

// Create inserts a and sets its ID.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO appointments (owner_id, branch, date, time, purpose, notes, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		a.OwnerID, a.Branch, a.Date, a.Time, a.Purpose, a.Notes, a.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// ListByOwner returns the owner's appointments, newest first.
func (r *AppointmentRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Appointment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, owner_id, branch, date, time, purpose, notes, created_at
		 FROM appointments WHERE owner_id=? ORDER BY created_at DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Appointment, 0)
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Branch, &a.Date, &a.Time, &a.Purpose, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

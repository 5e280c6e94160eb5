package main

import (
	"context"
	"errors"
	"log"

	"github.com/iliyamo/queuepro/internal/config"
	"github.com/iliyamo/queuepro/internal/database"
	"github.com/iliyamo/queuepro/internal/handler"
	"github.com/iliyamo/queuepro/internal/model"
	"github.com/iliyamo/queuepro/internal/repository"
	"github.com/iliyamo/queuepro/internal/ticketing"
)

type stores struct {
	tokens       ticketing.Store
	users        handler.UserStore
	sessions     handler.SessionStore
	appointments handler.AppointmentStore
}

// openStores builds the stores for cfg.StoreDriver.  The returned func
// releases the database connection, if any.
func openStores(ctx context.Context, cfg config.Config) (stores, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Printf("store: using in-memory repositories; data is lost on exit")
		return stores{
			tokens:       repository.NewMemoryTokenRepo(),
			users:        repository.NewMemoryUserRepo(),
			sessions:     repository.NewMemorySessionRepo(),
			appointments: repository.NewMemoryAppointmentRepo(),
		}, func() {}, nil
	}

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return stores{}, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, nil, err
	}
	return stores{
		tokens:       repository.NewTokenRepo(db),
		users:        repository.NewUserRepo(db),
		sessions:     repository.NewSessionRepo(db),
		appointments: repository.NewAppointmentRepo(db),
	}, func() { _ = db.Close() }, nil
}

// bootstrapAdmin creates the admin account named by ADMIN_EMAIL and
// ADMIN_PASSWORD.  An existing account is left untouched.
func bootstrapAdmin(ctx context.Context, cfg config.Config, users handler.UserStore) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	id, err := users.Create(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		log.Printf("bootstrap: admin %s already exists", cfg.AdminEmail)
	case err != nil:
		log.Printf("bootstrap: create admin %s: %v", cfg.AdminEmail, err)
	default:
		log.Printf("bootstrap: created admin %s (id=%d)", cfg.AdminEmail, id)
	}
}

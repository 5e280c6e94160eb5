package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(120) NOT NULL DEFAULT '',
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('user','admin') NOT NULL DEFAULT 'user',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// seq records insertion order and breaks created_at ties.
	`CREATE TABLE IF NOT EXISTS queue_tokens (
		seq          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		id           CHAR(36) NOT NULL,
		token_number VARCHAR(32) NOT NULL,
		owner_id     BIGINT UNSIGNED NOT NULL,
		owner_name   VARCHAR(120) NOT NULL DEFAULT '',
		owner_email  VARCHAR(255) NOT NULL DEFAULT '',
		branch       VARCHAR(32) NOT NULL,
		service_id   VARCHAR(64) NOT NULL,
		service_name VARCHAR(120) NOT NULL DEFAULT '',
		status       ENUM('waiting','served','cancelled') NOT NULL DEFAULT 'waiting',
		created_at   DATETIME(6) NOT NULL,
		served_at    DATETIME(6) NULL,
		UNIQUE KEY uq_queue_tokens_id (id),
		UNIQUE KEY uq_queue_tokens_number (token_number),
		KEY idx_queue_scope (branch, service_id, status, created_at, seq),
		KEY idx_queue_owner (owner_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS appointments (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		owner_id   BIGINT UNSIGNED NOT NULL,
		branch     VARCHAR(32) NOT NULL,
		date       VARCHAR(10) NOT NULL,
		time       VARCHAR(5) NOT NULL,
		purpose    VARCHAR(120) NOT NULL,
		notes      TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_appointments_owner (owner_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

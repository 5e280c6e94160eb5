// Package repository holds the MySQL and in-memory stores behind the
// queue service and the auth handlers.  Sentinel values defined here let
// handlers tell expected failures from server errors; token store errors
// reuse the ticketing sentinels so the core can match them directly.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidSession is returned for a refresh token that is unknown,
// revoked or expired.
var ErrInvalidSession = errors.New("invalid refresh session")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// Package repository contains data access logic separated from HTTP
// handlers.  Every call returns a Result so that services can branch on
// Success without inspecting driver errors.
package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicate is wrapped into Result.Err when an insert or update hits a
// unique constraint (duplicate username, email or token hash).
var ErrDuplicate = errors.New("duplicate key")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// classify folds unique-constraint violations into ErrDuplicate while
// keeping the driver error in the chain for logging.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	// SQLite (tests) reports "UNIQUE constraint failed: users.username".
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// now returns the timestamp written into created_at/updated_at columns.
// DATETIME has second precision in the schema, so sub-second parts are
// dropped to keep values round-trippable.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

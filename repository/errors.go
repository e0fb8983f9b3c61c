package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert or update hits a unique index.
var ErrDuplicate = errors.New("duplicate record")

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	msg := err.Error()
	// Postgres (SQLSTATE 23505) and SQLite spell unique violations differently.
	if strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

// lockingSupported reports whether the dialect understands SELECT ... FOR UPDATE.
func lockingSupported(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

package memberdb

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrNotFound is returned when a timeframe, event or member does not exist.
	ErrNotFound = errors.New("member record not found")
	// ErrDuplicate is returned when a member is already recorded for an event.
	ErrDuplicate = errors.New("member attendee already exists")
	// ErrColumnTaken is returned when another event already holds the tab column.
	ErrColumnTaken = errors.New("member event column already taken")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == uniqueViolation
	}
	return false
}

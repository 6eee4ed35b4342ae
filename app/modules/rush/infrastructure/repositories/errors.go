package rushdb

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrNotFound is returned when a timeframe, event or rushee does not exist.
	ErrNotFound = errors.New("rush record not found")
	// ErrDuplicate is returned when a rushee is already recorded for an event.
	ErrDuplicate = errors.New("rush attendee already exists")
	// ErrColumnTaken is returned when another event already holds the tab column.
	ErrColumnTaken = errors.New("rush event column already taken")
	// ErrDefaultTaken is returned when another timeframe became the default concurrently.
	ErrDefaultTaken = errors.New("rush default timeframe already set")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == uniqueViolation
	}
	return false
}

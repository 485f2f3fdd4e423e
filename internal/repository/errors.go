package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
)

func isUniqueViolation(err error) bool {
	return hasSQLState(err, uniqueViolation)
}

// IsSerializationFailure reports whether a serializable transaction lost a race.
func IsSerializationFailure(err error) bool {
	return hasSQLState(err, serializationFailure)
}

func hasSQLState(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}

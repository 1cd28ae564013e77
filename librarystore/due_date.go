package librarystore

import (
	"time"
)

// maxDueTimestamp is 9999-12-31T23:59:59Z. Timestamps beyond it do not map
// to a four-digit calendar year and are rejected as invalid input.
const maxDueTimestamp = int64(253402300799)

// DueDateFromUnix converts a seconds-since-epoch due timestamp into a
// calendar date (midnight UTC). Values outside [0, maxDueTimestamp] are
// rejected with ErrInvalidDueDate.
func DueDateFromUnix(dueTimestamp int64) (time.Time, error) {
	if dueTimestamp < 0 || dueTimestamp > maxDueTimestamp {
		return time.Time{}, ErrInvalidDueDate
	}

	t := time.Unix(dueTimestamp, 0).UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Today returns the current calendar date (midnight UTC), used for loan and
// return dates.
func Today() time.Time {
	now := time.Now().UTC()

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

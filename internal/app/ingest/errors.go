package ingest

import (
	"errors"
	"fmt"
)

// MalformedRecordError reports a raw record that could not be normalized:
// its identifier is missing, unusable, or already taken within the batch.
type MalformedRecordError struct {
	Kind   string // "user", "post", "comment"
	Index  int    // position in the raw batch
	ID     string // raw identifier, empty when missing
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("malformed %s record at index %d: %s", e.Kind, e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed %s record %q at index %d: %s", e.Kind, e.ID, e.Index, e.Reason)
}

// IsMalformed reports whether err is (or wraps) a *MalformedRecordError.
func IsMalformed(err error) bool {
	var me *MalformedRecordError
	return errors.As(err, &me)
}

const (
	reasonMissingID   = "missing identifier"
	reasonBadID       = "identifier is not a string or integer"
	reasonDuplicateID = "duplicate identifier in batch"
	reasonNotObject   = "record is not an object"
)

// internal/domain/models/id.go
package models

import (
	"strconv"
	"strings"
)

// ID identifies an entity within its collection.
//
// The community API hands out integer identifiers for most records, but
// nothing in this app depends on that, so IDs are kept in their string form.
type ID string

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// IntID builds an ID from an integer identifier.
func IntID(n int64) ID { return ID(strconv.FormatInt(n, 10)) }

// ParseID trims a raw identifier (usually a URL parameter).
func ParseID(s string) ID { return ID(strings.TrimSpace(s)) }

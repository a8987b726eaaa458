package store

import (
	"errors"
	"fmt"
)

var (
	// ErrOpen wraps every failure to open or upgrade the database.
	ErrOpen = errors.New("store: cannot open database")
	// ErrUnknownCollection is returned for collections missing from the schema.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrUnknownIndex is returned by Search for key paths that are not indexed.
	ErrUnknownIndex = errors.New("unknown index")
	// ErrInvalidKey is returned when a record carries a key that is not an integer.
	ErrInvalidKey = errors.New("invalid key")
)

// OpError describes a failed store operation.
type OpError struct {
	Collection string
	Op         string
	Err        error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

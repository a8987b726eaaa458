// Package common defines sentinel errors shared by the storage, repository
// and service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Entry-level errors.
	ErrorUnknownField   = errors.New("unknown field")
	ErrorInvalidValue   = errors.New("invalid value")
	ErrorInvalidPayload = errors.New("invalid payload")

	// Export errors.
	ErrorUnsupportedFormat = errors.New("unsupported format")
)

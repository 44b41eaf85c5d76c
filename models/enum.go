// ABOUTME: Shared helpers for closed string enumerations
// ABOUTME: Provides parsing and membership checks used by every enum type
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEnum is returned when a string does not name a member of an enumeration.
var ErrInvalidEnum = errors.New("invalid enum value")

func parseEnum[T ~string](kind, value string, all []T) (T, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	for _, member := range all {
		if string(member) == normalized {
			return member, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: unknown %s %q", ErrInvalidEnum, kind, value)
}

func containsEnum[T ~string](all []T, value T) bool {
	for _, member := range all {
		if member == value {
			return true
		}
	}
	return false
}

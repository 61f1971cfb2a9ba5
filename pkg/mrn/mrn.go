// Package mrn formats and parses medical record numbers.
// An MRN is "MRN-" followed by a sequence number zero-padded to six digits.
package mrn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const prefix = "MRN-"

// ErrInvalidFormat is returned when a string is not a well-formed MRN.
var ErrInvalidFormat = errors.New("invalid medical record number format")

// Format renders a sequence number as a medical record number.
func Format(seq int64) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}

// Sequence extracts the sequence number from a medical record number.
func Sequence(s string) (int64, error) {
	if !strings.HasPrefix(s, prefix) {
		return 0, ErrInvalidFormat
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(s, prefix), 10, 64)
	if err != nil || seq < 1 {
		return 0, ErrInvalidFormat
	}
	return seq, nil
}

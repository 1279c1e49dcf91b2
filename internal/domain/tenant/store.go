// Package tenant describes the key-value medium every borrower record lives in.
package tenant

import (
	"context"
	"errors"
)

var (
	ErrRecordNotFound  = errors.New("tenant record not found")
	ErrVersionConflict = errors.New("tenant record version conflict")
)

// Record is one stored value and the version it was read at.
type Record struct {
	Key     string
	Version int64
	Data    []byte
}

type Store interface {
	Get(ctx context.Context, key string) (Record, error)

	// Put writes data if the stored version equals expectedVersion
	// (0 = key must not exist yet) and returns the new version.
	Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error)

	// ScanByPrefix calls fn for every record whose key starts with prefix,
	// in key order. An error from fn stops the scan and is returned.
	ScanByPrefix(ctx context.Context, prefix string, fn func(Record) error) error
}

// PrefixUpperBound returns the smallest key greater than every key starting
// with prefix, or "" when no such bound exists.
func PrefixUpperBound(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}

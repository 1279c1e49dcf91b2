package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (a v4 UUID without separators).
func NewID32() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// NewEntryID derives a ledger entry id from a prefix and a parent id, so the
// same financial event always maps to the same entry id.
func NewEntryID(kind, parentID string) string {
	return kind + "-" + parentID
}

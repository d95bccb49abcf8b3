package model

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// VersionAbsent is the stamp a client presents when it believes a row does
// not exist yet. It is never stored.
const VersionAbsent = "none"

// NewVersion returns a fresh opaque version stamp for a row write.
// Stamps are 128-bit random values; only same-row equality is ever checked,
// so no ordering is implied between two stamps.
func NewVersion() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

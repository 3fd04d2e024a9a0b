package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the hex-encoded SHA-256 of data. Extraction caches
// key on it so identical documents share one entry regardless of filename.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

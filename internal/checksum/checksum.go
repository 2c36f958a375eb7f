// Package checksum computes the content digests used for change detection
// and optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Match reports whether ifMatch is empty or equals the digest of data.
// Surrounding quotes, as sent in HTTP If-Match headers, are ignored.
func Match(data []byte, ifMatch string) bool {
	if len(ifMatch) >= 2 && ifMatch[0] == '"' && ifMatch[len(ifMatch)-1] == '"' {
		ifMatch = ifMatch[1 : len(ifMatch)-1]
	}
	return ifMatch == "" || ifMatch == Sum(data)
}

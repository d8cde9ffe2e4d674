package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

const fingerprintPrefix = "blake3:"

// Fingerprint returns a stable content fingerprint for the given bytes,
// prefixed with the algorithm name.
func Fingerprint(data []byte) string {
	hash := blake3.Sum256(data)
	return fingerprintPrefix + hex.EncodeToString(hash[:])
}

// FingerprintString is a convenience wrapper over Fingerprint for text
// content.
func FingerprintString(text string) string {
	return Fingerprint([]byte(text))
}

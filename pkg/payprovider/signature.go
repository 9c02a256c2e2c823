package payprovider

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// Parameters that never participate in signature computation.
var signatureExcluded = map[string]bool{
	"signature":                 true,
	"response_signature_string": true,
}

// computeSignature implements the provider's scheme: parameters sorted by
// key, empty values and the signature fields skipped, values joined with
// '|' after the merchant secret, hashed with SHA-1.
func computeSignature(secret string, payload map[string]string) string {
	keys := make([]string, 0, len(payload))
	for key, value := range payload {
		if signatureExcluded[key] || value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, secret)
	for _, key := range keys {
		parts = append(parts, payload[key])
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))

	return hex.EncodeToString(sum[:])
}

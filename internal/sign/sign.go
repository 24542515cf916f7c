// Package sign implements the gateway's keyed request signature:
// HMAC-SHA256 over the alphabetically sorted concatenation of field
// names and values, hex encoded.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Field is the conventional name of the signature parameter itself.
// It is always excluded from the signed material.
const Field = "s"

// Sign computes the signature over fields using the shared secret.
// Field names are sorted bytewise ascending and each name is
// concatenated directly with its value, with no separator. An empty
// field set signs the empty string.
func Sign(fields map[string]string, secret string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if name == Field {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	mac := hmac.New(sha256.New, []byte(secret))
	for _, name := range names {
		mac.Write([]byte(name))
		mac.Write([]byte(fields[name]))
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether provided matches the signature of fields
// under secret. Comparison is constant time.
func Verify(fields map[string]string, provided, secret string) bool {
	expected := Sign(fields, secret)
	return hmac.Equal([]byte(expected), []byte(provided))
}

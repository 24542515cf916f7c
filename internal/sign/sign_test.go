package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign_SortsFieldsBytewise(t *testing.T) {
	fields := map[string]string{
		"commerceOrder": "tz_1_abc",
		"apiKey":        "key-1",
		"amount":        "12990",
	}

	// amount, apiKey, commerceOrder in byte order.
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("amount12990"))
	mac.Write([]byte("apiKeykey-1"))
	mac.Write([]byte("commerceOrdertz_1_abc"))
	expected := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, Sign(fields, "secret"))
}

func TestSign_ExcludesSignatureField(t *testing.T) {
	fields := map[string]string{
		"token": "tok-1",
	}
	sig := Sign(fields, "secret")

	withSig := map[string]string{
		"token": "tok-1",
		Field:   sig,
	}
	assert.Equal(t, sig, Sign(withSig, "secret"))
}

func TestSign_EmptyFieldSet(t *testing.T) {
	// The digest of the empty string is still computed, not an error.
	mac := hmac.New(sha256.New, []byte("secret"))
	expected := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, Sign(map[string]string{}, "secret"))
}

func TestVerify_RoundTrip(t *testing.T) {
	fields := map[string]string{
		"apiKey":        "key-1",
		"token":         "tok-abc",
		"commerceOrder": "tz_1700000000000_deadbeef",
	}

	sig := Sign(fields, "s3cret")
	assert.True(t, Verify(fields, sig, "s3cret"))
	assert.False(t, Verify(fields, sig, "other-secret"))
}

func TestVerify_TamperedSignature(t *testing.T) {
	fields := map[string]string{
		"token":  "tok-abc",
		"amount": "500",
	}
	sig := Sign(fields, "s3cret")
	require.NotEmpty(t, sig)

	// Flipping any single character must break verification.
	for i := range sig {
		tampered := []byte(sig)
		if tampered[i] == '0' {
			tampered[i] = '1'
		} else {
			tampered[i] = '0'
		}
		assert.False(t, Verify(fields, string(tampered), "s3cret"), "position %d", i)
	}
}

func TestVerify_TamperedField(t *testing.T) {
	fields := map[string]string{
		"token":  "tok-abc",
		"amount": "500",
	}
	sig := Sign(fields, "s3cret")

	fields["amount"] = "501"
	assert.False(t, Verify(fields, sig, "s3cret"))
}

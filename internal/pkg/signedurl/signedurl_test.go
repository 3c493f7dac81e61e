package signedurl

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func signAndParse(t *testing.T, s *Signer, path string, expiresAt time.Time) (int64, string) {
	t.Helper()

	u, err := url.Parse(s.Sign(path, expiresAt))
	require.NoError(t, err)

	expires, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	require.NoError(t, err)

	return expires, u.Query().Get("signature")
}

func TestSignAndVerify(t *testing.T) {
	s := NewSigner("secret")
	now := time.Now()

	expires, signature := signAndParse(t, s, "/orders/PO-1/download", now.Add(time.Hour))

	require.NoError(t, s.Verify("/orders/PO-1/download", expires, signature, now))
}

func TestVerifyRejectsExpiredLink(t *testing.T) {
	s := NewSigner("secret")
	now := time.Now()

	expires, signature := signAndParse(t, s, "/orders/PO-1/download", now.Add(-time.Minute))

	require.Error(t, s.Verify("/orders/PO-1/download", expires, signature, now))
}

func TestVerifyRejectsTamperedPath(t *testing.T) {
	s := NewSigner("secret")
	now := time.Now()

	expires, signature := signAndParse(t, s, "/orders/PO-1/download", now.Add(time.Hour))

	require.Error(t, s.Verify("/orders/PO-2/download", expires, signature, now))
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	now := time.Now()

	expires, signature := signAndParse(t, NewSigner("secret-a"), "/orders/PO-1/download", now.Add(time.Hour))

	require.Error(t, NewSigner("secret-b").Verify("/orders/PO-1/download", expires, signature, now))
}

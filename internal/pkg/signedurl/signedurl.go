package signedurl

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

// Signer issues and verifies HMAC-SHA256 signed download URLs. The signature
// covers the path and the expiry, so neither can be altered by the client.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) signature(path string, expiresAt int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", path, expiresAt)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign returns the path with expiry and signature query parameters appended.
func (s *Signer) Sign(path string, expiresAt time.Time) string {
	exp := expiresAt.Unix()
	return fmt.Sprintf("%s?expires=%d&signature=%s", path, exp, s.signature(path, exp))
}

// Verify checks the signature and expiry extracted from an incoming request.
func (s *Signer) Verify(path string, expiresAt int64, signature string, now time.Time) error {
	if now.Unix() > expiresAt {
		return errors.New(http.StatusForbidden, status.FORBIDDEN, "download link has expired")
	}

	expected := s.signature(path, expiresAt)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New(http.StatusForbidden, status.FORBIDDEN, "download link signature is invalid")
	}

	return nil
}

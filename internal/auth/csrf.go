package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// CSRFToken derives the CSRF token for a session token. The token is bound
// to the session, so it stops being valid when the session does; it has no
// expiry of its own.
func (s *Sessions) CSRFToken(sessionToken string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte("csrf:"))
	mac.Write([]byte(sessionToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCSRF checks a presented CSRF token against the session it claims
// to belong to, in constant time.
func (s *Sessions) VerifyCSRF(sessionToken, presented string) bool {
	if presented == "" {
		return false
	}
	want := s.CSRFToken(sessionToken)
	return hmac.Equal([]byte(want), []byte(presented))
}

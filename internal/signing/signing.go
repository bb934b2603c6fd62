// Package signing issues and checks HMAC signed form tokens. A token binds a
// random form id to an expiry so a posted contact form can be traced back
// to a page the site actually rendered.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformed = errors.New("signing: malformed token")
	ErrExpired   = errors.New("signing: token expired")
	ErrSignature = errors.New("signing: bad signature")
)

// Signer generates and validates HMAC based signatures.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

// Sign returns the hex signature for a form id and expiry.
func (s *Signer) Sign(formID string, expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", formID, expiresUnix)
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate compares the provided signature with the expected one in
// constant time.
func (s *Signer) Validate(formID, expires, signature string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	expected := s.Sign(formID, exp)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Token packs formID, expiry and signature as "id.expiry.signature".
func (s *Signer) Token(formID string, expires time.Time) string {
	exp := expires.Unix()
	return formID + "." + strconv.FormatInt(exp, 10) + "." + s.Sign(formID, exp)
}

// Verify checks a token produced by Token and returns its form id.
func (s *Signer) Verify(token string, now time.Time) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" {
		return "", ErrMalformed
	}
	formID, expires, sig := parts[0], parts[1], parts[2]
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return "", ErrMalformed
	}
	if !s.Validate(formID, expires, sig) {
		return "", ErrSignature
	}
	if now.Unix() > exp {
		return "", ErrExpired
	}
	return formID, nil
}

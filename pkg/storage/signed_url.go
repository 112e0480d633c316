package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrTokenInvalid covers malformed or tampered download tokens.
	ErrTokenInvalid = errors.New("invalid download token")
	// ErrTokenExpired is returned once a token's lifetime has passed.
	ErrTokenExpired = errors.New("download token expired")
)

// Signer issues short-lived HMAC tokens that authorise downloading one export.
// Tokens have the form <exportID>.<unix expiry>.<signature>.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a signer. A non-positive ttl falls back to 24h.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for exportID and the moment it expires.
func (s *Signer) Sign(exportID string) (string, time.Time, error) {
	if exportID == "" || strings.Contains(exportID, ".") {
		return "", time.Time{}, fmt.Errorf("export id %q cannot be signed", exportID)
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	return exportID + "." + expiry + "." + s.signature(exportID, expiry), expiresAt, nil
}

// Verify checks token and returns the export id it was issued for.
func (s *Signer) Verify(token string) (string, time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", time.Time{}, ErrTokenInvalid
	}
	exportID, expiry, sig := parts[0], parts[1], parts[2]

	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", time.Time{}, ErrTokenInvalid
	}
	if !hmac.Equal([]byte(sig), []byte(s.signature(exportID, expiry))) {
		return "", time.Time{}, ErrTokenInvalid
	}
	expiresAt := time.Unix(unix, 0)
	if s.now().After(expiresAt) {
		return exportID, expiresAt, ErrTokenExpired
	}
	return exportID, expiresAt, nil
}

func (s *Signer) signature(exportID, expiry string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(exportID + "|" + expiry))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Package auth wraps opaque session identifiers in authenticated, expiring
// tokens. Tokens are HMAC-SHA256 signed with a process-wide secret and embed
// the signing time, so a token can be rejected on tamper or on age.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
)

var (
	// ErrInvalidToken indicates the token is malformed, was signed with a
	// different secret, or has been tampered with.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenExpired indicates the token's signature is valid but it is
	// older than the permitted age.
	ErrTokenExpired = errors.New("auth: token expired")
)

const secretLen = 32

// Signer signs and verifies session tokens. Token format:
//
//	<id>.<base36 unix timestamp>.<base64url signature>
//
// The signature covers "<id>.<timestamp>" so neither part can be swapped.
type Signer struct {
	secret []byte
	clock  quartz.Clock
}

// NewSigner creates a signer with an explicit secret. An empty secret is
// replaced with fresh random bytes, which invalidates tokens across restarts.
func NewSigner(secret []byte) *Signer {
	if len(secret) == 0 {
		secret = randomSecret()
	}
	return &Signer{secret: secret, clock: quartz.NewReal()}
}

// NewSignerWithClock creates a signer with an injected clock for expiry tests
func NewSignerWithClock(secret []byte, clock quartz.Clock) *Signer {
	s := NewSigner(secret)
	s.clock = clock
	return s
}

func randomSecret() []byte {
	secret := make([]byte, secretLen)
	if _, err := rand.Read(secret); err != nil {
		panic("auth: failed to generate secret: " + err.Error())
	}
	return secret
}

var (
	defaultSigner *Signer
	defaultOnce   sync.Once
)

// DefaultSigner returns the process-wide signer. The secret comes from the
// SECRET_KEY environment variable, or is freshly generated when unset.
func DefaultSigner() *Signer {
	defaultOnce.Do(func() {
		defaultSigner = NewSigner([]byte(os.Getenv("SECRET_KEY")))
	})
	return defaultSigner
}

// Sign wraps a session id in a signed, timestamped token
func (s *Signer) Sign(id string) string {
	ts := strconv.FormatInt(s.clock.Now().Unix(), 36)
	payload := id + "." + ts
	return payload + "." + s.signature(payload)
}

// Unsign verifies a token and returns the embedded session id. It returns
// ErrInvalidToken on any malformation or signature mismatch, and
// ErrTokenExpired when the token is older than maxAge.
func (s *Signer) Unsign(token string, maxAge time.Duration) (string, error) {
	// Split from the right: the id itself may not contain dots, but being
	// strict about the shape here keeps parsing unambiguous.
	lastDot := strings.LastIndexByte(token, '.')
	if lastDot <= 0 {
		return "", ErrInvalidToken
	}
	payload, sig := token[:lastDot], token[lastDot+1:]

	if !hmac.Equal([]byte(sig), []byte(s.signature(payload))) {
		return "", ErrInvalidToken
	}

	midDot := strings.LastIndexByte(payload, '.')
	if midDot <= 0 {
		return "", ErrInvalidToken
	}
	id, tsStr := payload[:midDot], payload[midDot+1:]

	ts, err := strconv.ParseInt(tsStr, 36, 64)
	if err != nil {
		return "", ErrInvalidToken
	}

	signedAt := time.Unix(ts, 0)
	if s.clock.Now().Sub(signedAt) > maxAge {
		return "", ErrTokenExpired
	}

	return id, nil
}

func (s *Signer) signature(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind selects the claim purpose and validity window for an issued token.
// All kinds share one signing secret and envelope; Verify does not gate on the
// kind, callers check the claim shape their flow expects.
type TokenKind string

const (
	TokenKindSession       TokenKind = "session"
	TokenKindVerifyEmail   TokenKind = "verify_email"
	TokenKindResetPassword TokenKind = "reset_password"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the signed claim bundle shared by all token kinds.
type TokenClaims struct {
	UserID  string `json:"uid"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Purpose string `json:"purpose,omitempty"` // diagnostic only, never used to accept a token
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies claim-bearing tokens for the three purposes.
type TokenCodec struct {
	secret     []byte
	SessionTTL time.Duration
	VerifyTTL  time.Duration
	ResetTTL   time.Duration
}

var defaultCodec *TokenCodec

func NewTokenCodec(secret string, sessionTTL, verifyTTL, resetTTL time.Duration) *TokenCodec {
	c := &TokenCodec{
		secret:     []byte(secret),
		SessionTTL: sessionTTL,
		VerifyTTL:  verifyTTL,
		ResetTTL:   resetTTL,
	}
	defaultCodec = c
	return c
}

// DefaultCodec returns the last constructed TokenCodec (used for auto-wiring routes)
func DefaultCodec() *TokenCodec { return defaultCodec }

// TTL returns the validity window for a token kind.
func (c *TokenCodec) TTL(kind TokenKind) time.Duration {
	switch kind {
	case TokenKindVerifyEmail:
		return c.VerifyTTL
	case TokenKindResetPassword:
		return c.ResetTTL
	default:
		return c.SessionTTL
	}
}

// Issue signs a token of the given kind and returns it with its expiry.
func (c *TokenCodec) Issue(kind TokenKind, userID, email string, isAdmin bool) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(c.TTL(kind))
	claims := &TokenClaims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		Purpose: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(c.secret)
	return s, exp, err
}

// Verify checks signature and expiry and returns the decoded claims.
// It returns ErrTokenExpired past the embedded expiry and ErrTokenInvalid for
// any other failure (bad signature, malformed token, wrong method).
func (c *TokenCodec) Verify(tokenStr string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tkn.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

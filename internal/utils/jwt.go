package utils // helpers for delegation token handling and hashing

import (
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrBadDelegation is returned when a delegation token fails verification:
// wrong signature, wrong algorithm, expired, or missing the principal claim.
var ErrBadDelegation = errors.New("invalid delegation token")

// NewDelegation signs an HS256 delegation for a principal with the given
// time-to-live.  In production the identity provider issues these; the
// gateway signs its own only in tests.  Claims follow the issuer's
// contract: sub carries the principal's canonical text, exp and iat the
// usual unix timestamps.
func NewDelegation(secret, principal string, ttl time.Duration) (string, time.Time, error) {
    exp := time.Now().UTC().Add(ttl)
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub": principal,
        "exp": exp.Unix(),
        "iat": time.Now().UTC().Unix(),
    })
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return "", time.Time{}, err
    }
    return signed, exp, nil
}

// ParseDelegation verifies an HS256 delegation and returns the principal and
// expiry.  Any verification failure is reported as ErrBadDelegation so
// callers need not distinguish jwt library internals.
func ParseDelegation(secret, raw string) (principal string, exp time.Time, err error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrBadDelegation
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return "", time.Time{}, ErrBadDelegation
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", time.Time{}, ErrBadDelegation
    }
    principal, _ = claims["sub"].(string)
    if principal == "" {
        return "", time.Time{}, ErrBadDelegation
    }
    expTime, err := claims.GetExpirationTime()
    if err != nil || expTime == nil {
        return "", time.Time{}, ErrBadDelegation
    }
    return principal, expTime.Time, nil
}

// HashDelegationRaw returns the SHA-256 hex digest of a raw delegation.
// Lookups and logs reference delegations by this hash so the credential
// itself never appears in either.
func HashDelegationRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

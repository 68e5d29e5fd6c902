package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
)

var (
	// ErrInvalidToken is returned when a session token fails verification.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrMissingSecret is returned when signing or verifying without a key.
	ErrMissingSecret = errors.New("session secret is required")
)

// sessionClaims is the typed projection of the session token claim set.
type sessionClaims struct {
	Subject string `mapstructure:"sub"`
	Role    string `mapstructure:"role"`
	ClubID  string `mapstructure:"club_id"`
}

// IssueSessionToken signs a session token for the given subject, role and
// club affiliation using HS256.
func IssueSessionToken(secret []byte, session Session, issuedAt time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if session.Subject == "" {
		return "", fmt.Errorf("session subject is required")
	}
	if _, ok := ParseRole(string(session.Role)); !ok {
		return "", fmt.Errorf("unknown role %q", session.Role)
	}
	if ttl <= 0 {
		ttl = SessionDuration
	}

	claims := jwt.MapClaims{
		"sub":  session.Subject,
		"role": string(session.Role),
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(ttl).Unix(),
	}
	if session.ClubID != "" {
		claims["club_id"] = session.ClubID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken checks the signature and expiry of a session token and
// returns the session it encodes. The role must be one of the known roles.
func VerifySessionToken(secret []byte, token string, now time.Time) (Session, error) {
	if len(secret) == 0 {
		return Session{}, ErrMissingSecret
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	session, err := sessionFromClaims(mapClaims)
	if err != nil {
		return Session{}, err
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return Session{}, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	session.ExpiresAt = exp.Time
	session.Token = token
	return session, nil
}

// MirrorValues decodes a session token without verifying it and returns the
// key/value pairs mirrored into local storage. Clients hold no signing key, so
// the mirrored role is only ever advisory; the server re-verifies the token.
func MirrorValues(token string) (map[string]string, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	session, err := sessionFromClaims(mapClaims)
	if err != nil {
		return nil, err
	}

	values := map[string]string{
		KeyToken:   token,
		KeySubject: session.Subject,
		KeyRole:    string(session.Role),
	}
	if session.ClubID != "" {
		values[KeyClubID] = session.ClubID
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		values[KeyExpiresAt] = strconv.FormatInt(exp.Unix(), 10)
	}
	return values, nil
}

func sessionFromClaims(claims map[string]interface{}) (Session, error) {
	var decoded sessionClaims
	if err := mapstructure.Decode(claims, &decoded); err != nil {
		return Session{}, fmt.Errorf("%w: decode claims: %v", ErrInvalidToken, err)
	}
	if decoded.Subject == "" {
		return Session{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	role, ok := ParseRole(decoded.Role)
	if !ok {
		return Session{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, decoded.Role)
	}
	return Session{
		Subject: decoded.Subject,
		Role:    role,
		ClubID:  decoded.ClubID,
	}, nil
}

// Package identity maps bearer credentials to durable user identities.
// HTTP middleware and the websocket handshake both resolve through here so
// the caller identity is always an explicit value, never ambient state.
package identity

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is a resolved caller: a durable user id plus role.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// Outcome classifies a session handshake.
type Outcome int

const (
	// Authenticated: a valid credential resolved to a user.
	Authenticated Outcome = iota
	// Anonymous: no credential was presented at all.
	Anonymous
	// Rejected: a credential was presented but failed validation.
	Rejected
)

// HandshakeResult is the typed outcome of a durable-session handshake.
// Identity is only meaningful when Outcome is Authenticated.
type HandshakeResult struct {
	Outcome  Outcome
	Identity Identity
}

type Resolver struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewResolver(secret string, tokenTTL time.Duration) *Resolver {
	return &Resolver{secret: []byte(secret), tokenTTL: tokenTTL}
}

// IssueToken signs a credential carrying the user id and role.
func (r *Resolver) IssueToken(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"exp":  now.Add(r.tokenTTL).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}

// ResolveToken validates signature and expiry and returns the identity.
func (r *Resolver) ResolveToken(raw string) (Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	return Identity{UserID: userID, Role: role}, nil
}

// ResolveRequest resolves the Authorization header of an HTTP call.
func (r *Resolver) ResolveRequest(req *http.Request) (Identity, error) {
	header := req.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return Identity{}, ErrInvalidToken
	}
	return r.ResolveToken(strings.TrimPrefix(header, "Bearer "))
}

// ResolveHandshake classifies a durable-session handshake. The credential
// travels as a query parameter because browsers cannot attach headers to a
// websocket upgrade. Absent credential is Anonymous, not Rejected; the
// transport layer decides whether anonymous sessions are tolerated.
func (r *Resolver) ResolveHandshake(req *http.Request) HandshakeResult {
	raw := req.URL.Query().Get("token")
	if raw == "" {
		return HandshakeResult{Outcome: Anonymous}
	}
	id, err := r.ResolveToken(raw)
	if err != nil {
		return HandshakeResult{Outcome: Rejected}
	}
	return HandshakeResult{Outcome: Authenticated, Identity: id}
}

// Package auth is the identity-provider boundary: bearer token verification
// and per-request identity propagation. Nothing here holds session state;
// every request re-verifies its own credential.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

// Identity is a verified credential, valid for the duration of one request.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Provider verifies a presented bearer token and resolves it to an identity.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}

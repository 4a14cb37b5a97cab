package identity

import (
	"context"
	"errors"
)

// RoleAdmin is the single privilege level required for mutating inventory operations.
const RoleAdmin = "admin"

// ErrInvalidCredential covers a missing, malformed, or rejected credential,
// and any failure to reach the identity service (fail-closed).
var ErrInvalidCredential = errors.New("identity: invalid credential")

// Gate resolves a caller's bearer credential against the external identity
// service. Authenticate validates the credential and yields the subject id;
// Authorize looks up that subject's role. The raw credential is forwarded
// verbatim on both calls.
type Gate interface {
	Authenticate(ctx context.Context, credential string) (string, error)
	Authorize(ctx context.Context, credential, userID string) (string, error)
}

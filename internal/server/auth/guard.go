package auth

import (
	"context"
	"errors"

	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/server/models"
	"github.com/duedash/duedash/internal/server/repositories/users"
)

// SessionGuard turns a raw bearer token into an authenticated user. Both the
// HTTP middleware and the realtime handler go through this single decision
// point so the two transports can never drift apart on security logic.
type SessionGuard struct {
	secretKey []byte
	users     users.Repository
}

// NewSessionGuard constructs a guard over the given signing secret and user
// repository.
func NewSessionGuard(secretKey []byte, users users.Repository) *SessionGuard {
	return &SessionGuard{secretKey: secretKey, users: users}
}

// Authenticate verifies rawToken and resolves its subject to a user row.
//
// Token errors pass through unchanged (common.ErrTokenMalformed,
// ErrTokenExpired, ErrTokenWrongType, ErrTokenMissingSubject); a verified
// token whose subject has no user row yields common.ErrUnknownSubject.
// The call has no side effects and is safe to repeat with the same token.
func (g *SessionGuard) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	subject, err := GetSubjectFromToken(rawToken, g.secretKey)
	if err != nil {
		return nil, err
	}

	user, err := g.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnknownSubject
		}
		return nil, common.ErrInternal
	}

	return user, nil
}

package repository

import (
	"context"

	"mtasks/internal/domain/entity"
)

// IdentityProvider tells the application who is signed in
type IdentityProvider interface {
	// CurrentUser returns the signed-in user or entity.ErrNotAuthenticated
	CurrentUser(ctx context.Context) (*entity.User, error)

	// WatchAuthState emits the current user, then every sign-in and
	// sign-out. A nil user means signed out.
	WatchAuthState(ctx context.Context) (<-chan *entity.User, error)
}

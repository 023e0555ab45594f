package context

import (
	"context"

	"github.com/dtroode/voc-auth/internal/model"
)

type identityKey struct{}

var _ model.ContextManager = (*Manager)(nil)

// Manager represents an HTTP request context manager for the authenticated identity.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext returns a copy of ctx carrying identity.
//
// Parameters:
//   - ctx: The request context
//   - identity: The identity proven by the bearer token
//
// Returns a new context with the identity attached.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentityFromContext retrieves the identity set by SetIdentityToContext.
//
// Returns the identity and a boolean indicating whether one was found.
func (m *Manager) GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(model.Identity)
	return identity, ok
}

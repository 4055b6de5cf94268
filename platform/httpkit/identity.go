// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"context"
	"net/http"
	"slices"

	"educare/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Roles known to the platform.
const (
	RoleAdmin        = "admin"
	RoleOwner        = "owner"
	RoleProfessional = "professional"
	RoleEducator     = "educator"
	RoleParent       = "parent"
)

// AllRoles lists every role a token may carry.
var AllRoles = []string{RoleAdmin, RoleOwner, RoleProfessional, RoleEducator, RoleParent}

// Identity represents the authenticated user's identity.
// Handlers read it from the request context and pass it explicitly to
// services; nothing else in the stack consults ambient request state.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// Role returns the user's role claim.
	Role() string
	// HasRole reports whether the user's role is one of roles.
	HasRole(roles ...string) bool
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	role          string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID {
	return i.userID
}

func (i *identity) Role() string {
	return i.role
}

func (i *identity) HasRole(roles ...string) bool {
	return slices.Contains(roles, i.role)
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// NewIdentity returns an authenticated identity.
func NewIdentity(userID uuid.UUID, role string) Identity {
	return &identity{userID: userID, role: role, authenticated: true}
}

// Anonymous returns an unauthenticated identity.
func Anonymous() Identity {
	return &identity{}
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id. The user id is also
// exposed under logger.UserIDKey so log lines pick it up.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey{}, id)
	if id != nil && id.IsAuthenticated() {
		ctx = context.WithValue(ctx, logger.UserIDKey, id.UserID().String())
	}
	return ctx
}

// IdentityFrom extracts the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) Identity {
	if ctx == nil {
		return Anonymous()
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id == nil {
		return Anonymous()
	}
	return id
}

// GetIdentity extracts the Identity from the request context.
// Returns an unauthenticated identity if none is present.
func GetIdentity(c *gin.Context) Identity {
	return IdentityFrom(c.Request.Context())
}

// MustGetIdentity extracts the Identity from the request context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Error: errAuthRequired})
		return nil
	}
	return id
}

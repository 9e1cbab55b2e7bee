package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/kelechio/storefront-backend/api/responses"
	pkgerrors "github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/types"
)

// Identity arrives on trusted headers set by the auth proxy in front of this
// service: X-User-Id for registered users, X-Guest-Token for anonymous carts.
// When both are present the user wins.
const (
	userIDHeader     = "X-User-Id"
	guestTokenHeader = "X-Guest-Token"
)

type identityKey struct{}

// Identity extracts the caller's identity from the trusted headers and stores
// it on the request context. Requests without any identity pass through;
// RequireIdentity and RequireUser gate the routes that need one.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := r.Header.Get(userIDHeader); raw != "" {
				if id, err := uuid.Parse(raw); err == nil {
					ctx = context.WithValue(ctx, identityKey{}, types.UserIdentity(id))
					if logg != nil {
						ctx = logg.WithUserID(ctx, id.String())
					}
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if raw := r.Header.Get(guestTokenHeader); raw != "" {
				if id, err := uuid.Parse(raw); err == nil {
					ctx = context.WithValue(ctx, identityKey{}, types.GuestIdentity(id))
					if logg != nil {
						ctx = logg.WithGuestID(ctx, id.String())
					}
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the caller identity, which may be zero.
func IdentityFromContext(ctx context.Context) types.Identity {
	if id, ok := ctx.Value(identityKey{}).(types.Identity); ok {
		return id
	}
	return types.Identity{}
}

// UserIDFromContext returns the registered user id, or uuid.Nil.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	id := IdentityFromContext(ctx)
	if id.IsUser() {
		return *id.UserID
	}
	return uuid.Nil
}

// RequireIdentity rejects requests with neither a user nor a guest identity.
func RequireIdentity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IdentityFromContext(r.Context()).Valid() {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "a user or guest identity is required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects requests not made by a registered user.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IdentityFromContext(r.Context()).IsUser() {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "a registered user is required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Package identity resolves the authenticated customer for each request.
//
// Authentication follows the demo banking backend's token scheme: a bearer
// token of the form TOKEN_<customerId>. The customer profile is fetched from
// the banking gateway; when that fails the identity falls back to synthetic
// values derived from the token so the assistant stays usable offline.
package identity

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/swiftbank/assist/internal/bank"
	"github.com/swiftbank/assist/internal/domain"
)

const tokenPrefix = "TOKEN_"

type contextKey int

const identityKey contextKey = iota

// FromContext extracts the resolved customer identity from the request
// context. ok is false when the request did not pass the middleware.
func FromContext(ctx context.Context) (domain.CustomerIdentity, bool) {
	v, ok := ctx.Value(identityKey).(domain.CustomerIdentity)
	return v, ok
}

// WithIdentity returns a context carrying the given identity. Exported for
// handler tests.
func WithIdentity(ctx context.Context, id domain.CustomerIdentity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// TokenFromRequest pulls the bearer token from the Authorization header,
// falling back to the token query parameter for websocket upgrades.
func TokenFromRequest(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// CustomerIDFromToken derives the customer ID from a TOKEN_<customerId>
// bearer token. Empty when the token does not match the scheme.
func CustomerIDFromToken(token string) string {
	if !strings.HasPrefix(token, tokenPrefix) {
		return ""
	}
	return strings.TrimPrefix(token, tokenPrefix)
}

// Resolve builds the customer identity for a token, preferring the gateway
// profile and degrading to a synthetic identity when the gateway fails.
func Resolve(ctx context.Context, gw bank.Gateway, token string) (domain.CustomerIdentity, bool) {
	customerID := CustomerIDFromToken(token)
	if customerID == "" {
		return domain.CustomerIdentity{}, false
	}

	if profile, err := gw.GetCustomerProfile(ctx, customerID); err == nil {
		return domain.CustomerIdentity{
			CustomerID:    profile.CustomerID,
			AccountNumber: profile.AccountNumber,
			Mobile:        profile.Mobile,
			Name:          profile.Name,
		}, true
	} else {
		slog.Debug("profile lookup failed, using synthetic identity", "customer", customerID, "error", err)
	}

	return syntheticIdentity(customerID), true
}

func syntheticIdentity(customerID string) domain.CustomerIdentity {
	var digits strings.Builder
	for _, r := range customerID {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return domain.CustomerIdentity{
		CustomerID:    customerID,
		AccountNumber: "ACC" + digits.String(),
		Mobile:        "9999999999",
		Name:          customerID,
	}
}

// Middleware authenticates the request and injects the resolved identity
// into the request context. Requests without a valid token get 401.
func Middleware(gw bank.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, `{"success":false,"error":"Missing or invalid authorization token."}`, http.StatusUnauthorized)
				return
			}

			id, ok := Resolve(r.Context(), gw, token)
			if !ok {
				http.Error(w, `{"success":false,"error":"Missing or invalid authorization token."}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	kioskAuth "github.com/MrEthical07/kioskAuth"
)

type authResultContextKey struct{}

// AuthResultFromContext describes the authresultfromcontext operation and its observable behavior.
//
// AuthResultFromContext may return an error when input validation, dependency calls, or security checks fail.
// AuthResultFromContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func AuthResultFromContext(ctx context.Context) (*kioskAuth.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*kioskAuth.AuthResult)
	return res, ok
}

// Guard describes the guard operation and its observable behavior.
//
// Guard may return an error when input validation, dependency calls, or security checks fail.
// Guard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Guard(engine *kioskAuth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.ValidateAccess(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole describes the requirerole operation and its observable behavior.
//
// RequireRole may return an error when input validation, dependency calls, or security checks fail.
// RequireRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func RequireRole(engine *kioskAuth.Engine, role string) func(http.Handler) http.Handler {
	guard := Guard(engine)

	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := AuthResultFromContext(r.Context())
			if !ok || res.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}))
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/cpd/internal/api/presenter"
)

const AdminRole = "admin"

// AdminClaims are the claims expected in admin tokens.
type AdminClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// AdminAuth only lets requests through that carry an HS256 JWT signed with signingKey
// and holding the admin role.
func AdminAuth(signingKey []byte) func(handler http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenStr == "" {
				presenter.Error(w, r, presenter.CodeLoginRequired, "login required", http.StatusUnauthorized)
				return
			}

			var claims AdminClaims
			token, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
				return signingKey, nil
			})
			if err != nil || !token.Valid {
				presenter.Error(w, r, presenter.CodeInvalidSession, "invalid session token", http.StatusUnauthorized)
				return
			}

			if !slices.Contains(claims.Roles, AdminRole) {
				presenter.Error(w, r, presenter.CodeForbidden, "insufficient privileges", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

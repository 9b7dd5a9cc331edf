package middleware

import (
	"net/http"
	"strings"

	"rinkdesk/internal/adapters/restapi"
)

// TokenCookieName is the cookie that carries the upstream API token for browser clients.
const TokenCookieName = "rinkdesk_token"

// Auth returns middleware that forwards the caller's API token.
// The token comes from an "Authorization: Bearer" header, else the
// TokenCookieName cookie, and is placed in the request context for the REST
// client. When requireToken is set, /api/ requests without a token are
// rejected with 401.
func Auth(requireToken bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(TokenCookieName); err == nil {
					token = strings.TrimSpace(c.Value)
				}
			}
			if token == "" {
				if requireToken && strings.HasPrefix(r.URL.Path, "/api/") {
					w.Header().Set("WWW-Authenticate", `Bearer realm="rinkdesk"`)
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(restapi.WithToken(r.Context(), token)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

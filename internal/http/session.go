package http

import (
	"context"
	"net/http"
	"time"

	"duitku/internal/auth"
	"duitku/internal/core"
)

// sessionCookie is the cookie carrying the JWT session token.
const sessionCookie = "token"

// ClaimsFrom returns the verified session claims attached by authMiddleware.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}

func setSessionCookie(w http.ResponseWriter, token string, expiry time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(expiry),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// authMiddleware verifies the session cookie and attaches the claims to the
// request context. Requests without a valid session get 401.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			writeError(r.Context(), w, s.logger, core.ErrUnauthenticated)
			return
		}

		claims, err := s.tokens.Verify(cookie.Value)
		if err != nil {
			writeError(r.Context(), w, s.logger, core.ErrUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

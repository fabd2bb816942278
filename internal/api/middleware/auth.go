package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chatbot-api/internal/api/response"
	"github.com/Rrens/chatbot-api/internal/security"
)

type contextKey string

const (
	UserIDKey    contextKey = "userID"
	UserEmailKey contextKey = "userEmail"
)

const (
	msgTokenMissing = "Token Not Received"
	msgTokenInvalid = "Token Expired or Invalid"
)

// AuthMiddleware authenticates requests by the signed session cookie
type AuthMiddleware struct {
	tokens     *security.TokenManager
	signer     *security.CookieSigner
	cookieName string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens *security.TokenManager, signer *security.CookieSigner, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		signer:     signer,
		cookieName: cookieName,
	}
}

// Authenticate verifies the session cookie and stores the claim in the
// request context. A cookie with a bad signature counts as absent.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.token(r)
		if strings.TrimSpace(token) == "" {
			response.Message(w, http.StatusUnauthorized, msgTokenMissing)
			return
		}

		claims, err := m.tokens.VerifyToken(token)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Token verification failed")
			response.Message(w, http.StatusUnauthorized, msgTokenInvalid)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) token(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	raw := cookie.Value
	// cookies written by cookie-parser arrive percent-encoded
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	value, ok := m.signer.Unsign(raw)
	if !ok {
		return ""
	}
	return value
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserEmail gets the user email from context
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

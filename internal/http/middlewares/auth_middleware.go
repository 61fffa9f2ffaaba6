package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie checked before the Authorization header.
const TokenCookie = "token"

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthRecorder counts gate outcomes. *observability.Prom satisfies it.
type AuthRecorder interface {
	AuthEvent(event, result string)
}

type AuthMiddleware struct {
	tokens  TokenVerifier
	metrics AuthRecorder
}

func NewAuthMiddleware(tokens TokenVerifier, metrics AuthRecorder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, metrics: metrics}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			m.record("missing")
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}

		userID, err := m.tokens.Verify(raw)
		if err != nil {
			m.record("invalid")
			abortJSON(c, http.StatusUnauthorized, "invalid_token", "Invalid token")
			return
		}

		m.record("ok")

		c.Set(CtxUserID, userID)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), userID))

		c.Next()
	}
}

func (m *AuthMiddleware) record(result string) {
	if m.metrics != nil {
		m.metrics.AuthEvent("verify", result)
	}
}

// tokenFromRequest prefers the token cookie and falls back to a Bearer header.
func tokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(TokenCookie); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	scheme, rest, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(rest)
}

// UserIDFromContext returns the id stored by RequireAuth.
func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	body := gin.H{"error": msg, "code": code}
	if rid := c.GetString(CtxRequestID); rid != "" {
		body["requestId"] = rid
	}
	c.AbortWithStatusJSON(status, body)
}

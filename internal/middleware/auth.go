package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/security"
)

const (
	// SessionContextKey is the echo context key holding the domain.Session.
	SessionContextKey = "session"
	// AuthCookieName is the cookie carrying the session token.
	AuthCookieName = "auth_token"
)

// UserLoader resolves the user named by a token subject.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Session returns the session stored by Authenticate, or domain.Anonymous.
func Session(c echo.Context) domain.Session {
	if s, ok := c.Get(SessionContextKey).(domain.Session); ok {
		return s
	}
	return domain.Anonymous
}

// Authenticate resolves the request's token into a domain.Session. It never
// rejects a request; unauthenticated callers get domain.Anonymous. Tokens are
// read from the auth cookie or an "Authorization: Bearer" header.
func Authenticate(signer *security.TokenSigner, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFrom(c)
			if token == "" {
				c.Set(SessionContextKey, domain.Anonymous)
				return next(c)
			}

			session, err := resolve(c.Request().Context(), signer, users, token)
			if err != nil {
				FromContext(c.Request().Context()).Debug("Discarding invalid session token", "error", err)
				clearAuthCookie(c)
				session = domain.Anonymous
			}
			c.Set(SessionContextKey, session)
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests. API paths and non-GET requests get
// 401 JSON; browser page loads are redirected to the login page.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := Session(c).RequireAuth(); err != nil {
			if wantsJSON(c) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
			}
			return c.Redirect(http.StatusSeeOther, "/auth/login")
		}
		return next(c)
	}
}

func resolve(ctx context.Context, signer *security.TokenSigner, users UserLoader, token string) (domain.Session, error) {
	claims, err := signer.Parse(token)
	if err != nil {
		return domain.Anonymous, err
	}
	user, err := users.GetByID(ctx, claims.Subject)
	if err != nil {
		return domain.Anonymous, err
	}
	if user == nil {
		return domain.Anonymous, errors.New("token subject has no user")
	}
	return domain.NewSession(user), nil
}

func tokenFrom(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.HasPrefix(req.URL.Path, "/api/") || req.Header.Get("HX-Request") == "true" {
		return true
	}
	if req.Method != http.MethodGet {
		return true
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func clearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

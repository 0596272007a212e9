package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

type fakeUsers map[string]*domain.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func newTestEcho(t *testing.T) (*echo.Echo, *security.TokenSigner) {
	t.Helper()
	signer := security.NewTokenSigner("secret", time.Hour)
	name := "Ada"
	id := surrealmodels.NewRecordID("user", "ada")
	users := fakeUsers{"user:ada": {ID: &id, Email: "ada@example.com", Name: &name}}

	e := echo.New()
	e.Use(Authenticate(signer, users))
	whoami := func(c echo.Context) error {
		return c.JSON(http.StatusOK, Session(c))
	}
	e.GET("/public", whoami)
	e.GET("/app/page", whoami, RequireAuth)
	e.GET("/api/me", whoami, RequireAuth)
	e.POST("/app/page", whoami, RequireAuth)
	return e, signer
}

func TestAuth(t *testing.T) {
	e, signer := newTestEcho(t)

	t.Run("anonymous on public route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"authenticated":false`)
	})

	t.Run("browser page redirects to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/page", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	})

	t.Run("api answers 401 json", func(t *testing.T) {
		for _, req := range []*http.Request{
			httptest.NewRequest(http.MethodGet, "/api/me", nil),
			httptest.NewRequest(http.MethodPost, "/app/page", nil),
		} {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())
		}
	})

	t.Run("valid cookie", func(t *testing.T) {
		token, err := signer.Sign("user:ada", "ada@example.com", time.Now())
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"userId":"user:ada"`)
		assert.Contains(t, rec.Body.String(), `"name":"Ada"`)
	})

	t.Run("bearer header", func(t *testing.T) {
		token, err := signer.Sign("user:ada", "", time.Now())
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("token for unknown user clears cookie", func(t *testing.T) {
		token, err := signer.Sign("user:ghost", "", time.Now())
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), AuthCookieName+"=;")
	})
}

package view_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

func setupTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	store := sessions.NewCookieStore([]byte(testSessionSecret))
	var c echo.Context
	handler := func(ctx echo.Context) error { c = ctx; return nil }
	_ = session.Middleware(store)(handler)(e.NewContext(req, rec))
	return c, rec
}

func TestFlashMessages(t *testing.T) {
	t.Run("success is read once", func(t *testing.T) {
		c, _ := setupTestContext()
		view.SetFlashSuccess(c, "It worked!")

		flashes := view.GetFlashData(c)
		assert.Equal(t, []string{"It worked!"}, flashes.Success)
		assert.Empty(t, flashes.Error)

		assert.Empty(t, view.GetFlashData(c).Success)
	})

	t.Run("error", func(t *testing.T) {
		c, _ := setupTestContext()
		view.SetFlashError(c, "It failed!")
		flashes := view.GetFlashData(c)
		assert.Equal(t, []string{"It failed!"}, flashes.Error)
	})
}

func TestBase(t *testing.T) {
	var buf bytes.Buffer
	node := view.Base("Chat", view.FlashData{Error: []string{"Oops"}}, view.LoginForm("a@example.com"))
	require.NoError(t, node.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "<title>Chat | Eventhub</title>")
	assert.Contains(t, html, "htmx.org")
	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, `value="a@example.com"`)
}

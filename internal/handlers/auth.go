package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/middleware"
	"github.com/nfrund/eventhub/internal/security"
	"github.com/nfrund/eventhub/internal/view"
)

// AuthHandler serves registration, login and logout. JSON callers get JSON;
// form posts from the HTML pages get redirects with flash messages.
type AuthHandler struct {
	users   domain.UserRepository
	signer  *security.TokenSigner
	emailer domain.EmailSender
	baseURL string
	now     func() time.Time
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users domain.UserRepository, signer *security.TokenSigner, emailer domain.EmailSender, baseURL string) *AuthHandler {
	return &AuthHandler{users: users, signer: signer, emailer: emailer, baseURL: baseURL, now: time.Now}
}

// LoginPage renders GET /auth/login.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return view.Page(c, "Log in", view.LoginForm(c.QueryParam("email")))
}

// RegisterPage renders GET /auth/register.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return view.Page(c, "Register", view.RegisterForm(""))
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return h.fail(c, "/auth/register", http.StatusBadRequest, "Please provide a valid email and a password of at least 8 characters.")
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return h.fail(c, "/auth/register", http.StatusBadRequest, err.Error())
	}

	user := &domain.User{Email: strings.ToLower(strings.TrimSpace(req.Email)), PasswordHash: hash}
	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = &name
	}

	ctx := c.Request().Context()
	created, err := h.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return h.fail(c, "/auth/register", http.StatusConflict, "A user with this email already exists.")
		}
		middleware.FromContext(ctx).Error("Error creating user", "error", err)
		return h.fail(c, "/auth/register", http.StatusInternalServerError, "Could not create your account.")
	}

	if err := h.startSession(c, created); err != nil {
		return RespondError(c, err)
	}
	h.sendWelcome(ctx, created)

	if isForm(c) {
		view.SetFlashSuccess(c, "Account created successfully!")
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.JSON(http.StatusCreated, domain.NewSession(created))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return h.fail(c, "/auth/login", http.StatusBadRequest, "Email and password are required.")
	}

	ctx := c.Request().Context()
	user, err := h.users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || user == nil || !security.ComparePassword(user.PasswordHash, req.Password) {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			middleware.FromContext(ctx).Error("Login lookup failed", "error", err)
		}
		middleware.FromContext(ctx).Warn("Failed login attempt", "email", req.Email)
		return h.fail(c, "/auth/login", http.StatusUnauthorized, "Invalid email or password.")
	}

	if err := h.startSession(c, user); err != nil {
		return RespondError(c, err)
	}
	if isForm(c) {
		view.SetFlashSuccess(c, "Logged in successfully!")
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.JSON(http.StatusOK, domain.NewSession(user))
}

// Logout handles POST /auth/logout by expiring the auth cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	setAuthCookie(c, "", -1)
	if isForm(c) {
		view.SetFlashSuccess(c, "You have been logged out.")
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.Session(c))
}

func (h *AuthHandler) startSession(c echo.Context, user *domain.User) error {
	s := domain.NewSession(user)
	token, err := h.signer.Sign(s.UserID, s.Email, h.now())
	if err != nil {
		return err
	}
	setAuthCookie(c, token, int(h.signer.TTL().Seconds()))
	c.Response().Header().Set("X-Auth-Token", token)
	return nil
}

func (h *AuthHandler) sendWelcome(ctx context.Context, user *domain.User) {
	if h.emailer == nil {
		return
	}
	body := fmt.Sprintf(`<p>Welcome to Eventhub, %s!</p><p><a href="%s">Find your next event</a></p>`,
		html.EscapeString(user.DisplayName()), html.EscapeString(h.baseURL))
	if err := h.emailer.Send(ctx, user.Email, "Welcome to Eventhub", body); err != nil {
		middleware.FromContext(ctx).Warn("Failed to send welcome email", "error", err)
	}
}

// fail answers JSON callers with status and form callers with a flash and a
// redirect back to page.
func (h *AuthHandler) fail(c echo.Context, page string, status int, msg string) error {
	if isForm(c) {
		view.SetFlashError(c, msg)
		return c.Redirect(http.StatusSeeOther, page)
	}
	return JSONError(c, status, msg)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func isForm(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm)
}

func setAuthCookie(c echo.Context, token string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

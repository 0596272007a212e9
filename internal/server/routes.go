package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/handlers"
	"github.com/nfrund/eventhub/internal/middleware"
)

const authRequestsPerMinute = 10

// RegisterRoutes sets up the routes that do not belong to a module.
func (s *Server) RegisterRoutes() {
	authHandler := handlers.NewAuthHandler(s.UserStore, s.Signer, s.Emailer, s.Cfg.GetAppBaseURL())
	rateLimiter := middleware.RateLimiter(authRequestsPerMinute)

	s.E.GET("/", func(c echo.Context) error {
		if middleware.Session(c).Authenticated {
			return c.Redirect(http.StatusSeeOther, "/api/me")
		}
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	})

	auth := s.E.Group("/auth")
	auth.GET("/register", authHandler.RegisterPage)
	auth.POST("/register", authHandler.Register, rateLimiter)
	auth.GET("/login", authHandler.LoginPage)
	auth.POST("/login", authHandler.Login, rateLimiter)
	auth.POST("/logout", authHandler.Logout)

	s.E.GET("/api/me", authHandler.Me, middleware.RequireAuth)

	s.E.GET("/health", handlers.Health)
}

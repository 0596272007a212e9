package server

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/eventhub/internal/config"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/handlers"
	appmiddleware "github.com/nfrund/eventhub/internal/middleware"
	"github.com/nfrund/eventhub/internal/module"
	"github.com/nfrund/eventhub/internal/pubsub"
	"github.com/nfrund/eventhub/internal/security"
	"github.com/nfrund/eventhub/internal/storage"
)

// Closer is a resource released at the end of shutdown, typically the
// database connection.
type Closer interface {
	Close(ctx context.Context) error
}

// Dependencies holds everything the server needs from main.
type Dependencies struct {
	Config     config.Provider
	Users      domain.UserRepository
	Emailer    domain.EmailSender
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
	Files      storage.Store
	// DB is closed last during shutdown. Optional.
	DB Closer
	// Echo lets tests supply their own instance. Optional.
	Echo *echo.Echo
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E          *echo.Echo
	Cfg        config.Provider
	Emailer    domain.EmailSender
	UserStore  domain.UserRepository
	Signer     *security.TokenSigner
	publisher  pubsub.Publisher
	subscriber pubsub.Subscriber
	files      storage.Store
	db         Closer

	modules       []module.Module
	cancelModules context.CancelFunc
}

// New creates a new Server instance with the global middleware installed.
func New(deps Dependencies) (*Server, error) {
	if deps.Config == nil || deps.Users == nil || deps.Publisher == nil || deps.Subscriber == nil {
		return nil, errors.New("server: config, users, publisher and subscriber are required")
	}

	e := deps.Echo
	if e == nil {
		e = echo.New()
	}
	e.HideBanner = true

	s := &Server{
		E:          e,
		Cfg:        deps.Config,
		Emailer:    deps.Emailer,
		UserStore:  deps.Users,
		Signer:     security.NewTokenSigner(deps.Config.GetSessionSecret(), deps.Config.GetAuthTokenTTL()),
		publisher:  deps.Publisher,
		subscriber: deps.Subscriber,
		files:      deps.Files,
		db:         deps.DB,
	}
	s.setupMiddleware()
	setupErrorHandling(e)
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.E.Validator = handlers.NewValidator()

	s.E.Use(middleware.RequestID())
	s.E.Use(appmiddleware.Logger)
	s.E.Use(middleware.Logger())
	s.E.Use(middleware.Recover())

	// Configure and use session middleware
	store := sessions.NewCookieStore([]byte(s.Cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	s.E.Use(session.Middleware(store))
	s.E.Use(appmiddleware.Authenticate(s.Signer, s.UserStore))
}

// setupErrorHandling logs unexpected errors with a stack trace before echo
// writes the response. HTTP errors raised on purpose are not logged.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			appmiddleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				"error", err,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

package echoweb

import (
	"context"
	"net/http"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		UserSvc        *user.Service
		StudentSvc     *student.Service
		AttendanceSvc  *attendance.Service
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
		// Signals receives OS signals registered by the caller. A private channel is used when nil.
		Signals chan os.Signal
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		ServerDeps
		app        *echo.Echo
		errors     chan error
		shutdown   chan os.Signal
		sessionKey []byte
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		ServerDeps: deps,
		app:        echo.New(),
		errors:     make(chan error, 1),
		shutdown:   deps.Signals,
		sessionKey: []byte(deps.Conf.SecretKey),
	}
	if s.shutdown == nil {
		s.shutdown = make(chan os.Signal, 1)
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.Conf.Debug
	s.app.Renderer = newRenderer()
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        func(echo.Context) bool { return s.Conf.Server.DisableCSRF },
		TokenLookup:    "form:" + csrfField,
		ContextKey:     csrfField,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
	}))
	s.app.Use(s.sessionMiddleware)

	s.app.GET("/home", s.home)
	registerAuthRoutes(s.app, s)
	registerFacultyRoutes(s.app, s)
	registerAdminRoutes(s.app, s)
	registerStudentViewRoutes(s.app, s)
}

func (s *server) Start() {
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return s.render(ctx, http.StatusOK, "home.html", nil)
}

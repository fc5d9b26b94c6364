package echoweb

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

const (
	sessionCookie       = "session"
	contextPrincipalKey = "principal"
)

var signingMethod = jwt.SigningMethodHS256

// Claims represents the session claims stored in the signed session cookie.
type Claims struct {
	jwt.StandardClaims
	Username string    `json:"username,omitempty"`
	Role     user.Role `json:"role,omitempty"`
}

func (c Claims) Principal() user.Principal {
	return user.Principal{Username: c.Username, Role: c.Role}
}

// GetPrincipalClaims returns the session claims of p, valid for conf.Server.SessionExpirationDelta.
func GetPrincipalClaims(p user.Principal, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   p.Username,
			ExpiresAt: now.Add(conf.Server.SessionExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: p.Username,
		Role:     p.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the session Claims.
func GenerateToken(claims *Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(signingMethod, claims)
	ss, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(raw string, key []byte) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != signingMethod.Alg() {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || !claims.Role.Valid() {
		return nil, errors.New("invalid session")
	}
	return claims, nil
}

// sessionMiddleware resolves the session cookie into a user.Principal. Missing or bad sessions are anonymous.
func (s *server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p := user.Anonymous
		if cookie, err := ctx.Cookie(sessionCookie); err == nil && cookie.Value != "" {
			if claims, err := parseToken(cookie.Value, s.sessionKey); err == nil {
				p = claims.Principal()
			} else {
				clearCookie(ctx, sessionCookie)
			}
		}
		ctx.Set(contextPrincipalKey, p)
		return next(ctx)
	}
}

func getContextPrincipal(ctx echo.Context) user.Principal {
	if p, ok := ctx.Get(contextPrincipalKey).(user.Principal); ok {
		return p
	}
	return user.Anonymous
}

// roleMiddleware sends callers without role back to the login page.
func roleMiddleware(role user.Role, notice ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if getContextPrincipal(ctx).Require(role) != nil {
				if len(notice) > 0 {
					setFlash(ctx, notice[0])
				}
				return ctx.Redirect(http.StatusFound, "/")
			}
			return next(ctx)
		}
	}
}

func (s *server) startSession(ctx echo.Context, p user.Principal) error {
	token, err := GenerateToken(GetPrincipalClaims(p, s.Conf), s.sessionKey)
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.Conf.Server.SessionExpirationDelta),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	ctx.Set(contextPrincipalKey, p)
	return nil
}

func clearCookie(ctx echo.Context, name string) {
	ctx.SetCookie(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

func registerAuthRoutes(app *echo.Echo, s *server) {
	app.GET("/", s.loginPage)
	app.POST("/", s.login)
	app.GET("/logout", s.logout)
}

type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username)
	return validate.Struct(lr)
}

func (s *server) loginPage(ctx echo.Context) error {
	return s.render(ctx, http.StatusOK, "login.html", nil)
}

func (s *server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		setFlash(ctx, core.FirstError(err, s.Translator))
		return s.render(ctx, http.StatusOK, "login.html", nil)
	}

	p, err := s.UserSvc.Authenticate(data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrAuthenticationFailed {
			setFlash(ctx, "Invalid username or password")
			return s.render(ctx, http.StatusOK, "login.html", nil)
		}
		return errors.Wrap(err, "authenticating")
	}
	if err = s.startSession(ctx, p); err != nil {
		return errors.Wrap(err, "starting session")
	}
	if p.IsAdmin() {
		return ctx.Redirect(http.StatusFound, "/admin")
	}
	return ctx.Redirect(http.StatusFound, "/faculty")
}

func (s *server) logout(ctx echo.Context) error {
	clearCookie(ctx, sessionCookie)
	return ctx.Redirect(http.StatusFound, "/")
}

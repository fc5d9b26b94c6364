package echoweb

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

type errorPage struct {
	Code    int
	Message string
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders our errors as HTML.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = origErr.Error()
		default:
			switch origErr {
			case user.ErrForbidden: // no details leaked, back to login
				if !ctx.Response().Committed {
					_ = ctx.Redirect(http.StatusFound, "/")
				}
				return
			case student.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = http.StatusText(code)
				logger.Error(message, errors.Wrap(err, message), getContextPrincipal(ctx))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.Render(code, "error.html", Page{
					Principal: getContextPrincipal(ctx),
					Data:      errorPage{Code: code, Message: message},
				})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

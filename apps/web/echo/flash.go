package echoweb

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

const (
	flashCookie = "flash"
	flashKey    = "flash"
)

// setFlash queues a one-line notice for the next rendered page, in this request or after a redirect.
func setFlash(ctx echo.Context, msg string) {
	ctx.Set(flashKey, msg)
	ctx.SetCookie(&http.Cookie{Name: flashCookie, Value: url.QueryEscape(msg), Path: "/", HttpOnly: true})
}

// popFlash returns the pending notice, if any, and clears it.
func popFlash(ctx echo.Context) string {
	msg, _ := ctx.Get(flashKey).(string)
	if cookie, err := ctx.Cookie(flashCookie); err == nil && cookie.Value != "" {
		if msg == "" {
			msg, _ = url.QueryUnescape(cookie.Value)
		}
		clearCookie(ctx, flashCookie)
	} else if msg != "" {
		clearCookie(ctx, flashCookie)
	}
	ctx.Set(flashKey, "")
	return msg
}

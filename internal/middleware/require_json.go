package middleware

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
)

// bodyを受けるメソッドは application/json 以外を 415 で弾く
func RequireJSON() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				return next(c)
			}

			ct := c.Request().Header.Get(echo.HeaderContentType)
			mediaType, _, err := mime.ParseMediaType(ct)
			if ct == "" || err != nil || mediaType != echo.MIMEApplicationJSON {
				return c.JSON(http.StatusUnsupportedMediaType, errorJSON("Content-Type must be "+echo.MIMEApplicationJSON))
			}
			return next(c)
		}
	}
}

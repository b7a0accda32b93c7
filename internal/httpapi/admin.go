package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/langid/internal/auth"
)

// requireAdmin checks the bearer token against AdminTokenHash. Routes stay
// open when no hash is configured.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.opts.AdminTokenHash == "" {
			return next(c)
		}

		token := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !auth.VerifyToken(token, s.opts.AdminTokenHash) {
			s.logger.Warn().
				Str("uri", c.Request().RequestURI).
				Str("remote_ip", c.RealIP()).
				Msg("rejected admin request")
			return fail(c, http.StatusUnauthorized, "Unauthorized", nil)
		}
		return next(c)
	}
}

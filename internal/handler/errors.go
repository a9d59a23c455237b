package handler

// errors.go is the single boundary where core error kinds become HTTP
// statuses. The core packages never import net/http for this purpose.

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/health-record-service/internal/apperr"
)

// writeError translates a core error into the transport response. Unknown
// errors are reported as a generic server fault; internal detail is logged
// but never sent to the client.
func writeError(c echo.Context, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindValidation, apperr.KindDuplicateCredential:
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": ae.Message})
		case apperr.KindInvalidCredential, apperr.KindUnauthenticated:
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": ae.Message})
		case apperr.KindForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"detail": ae.Message})
		case apperr.KindNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"detail": ae.Message})
		case apperr.KindConflict:
			return c.JSON(http.StatusConflict, echo.Map{"detail": ae.Message})
		}
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Internal server error"})
}

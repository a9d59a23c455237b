package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"   // errors.As unwraps structured auth failures
    "net/http" // HTTP status codes for responses
    "strconv"  // id formatting for downstream middleware keys
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/health-record-service/internal/apperr"
    "github.com/iliyamo/health-record-service/internal/auth"
)

// PrincipalKey is the context key under which the authenticated user is
// stored for handlers.
const PrincipalKey = "principal"

// Authenticate returns an Echo middleware that resolves the calling
// principal from a Bearer access token before any protected handler runs.
// The gate fails closed: a missing, malformed, expired or unverifiable
// token — or a subject that no longer exists — yields 401 with a
// WWW-Authenticate challenge, and an inactive principal yields 403.
// Handlers read the principal via c.Get(middleware.PrincipalKey).
func Authenticate(svc *auth.Service) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return challenge(c, "Not authenticated")
            }
            raw := strings.TrimPrefix(header, "Bearer ")

            principal, err := svc.Authenticate(c.Request().Context(), raw)
            if err != nil {
                var ae *apperr.Error
                if errors.As(err, &ae) {
                    switch ae.Kind {
                    case apperr.KindForbidden:
                        return c.JSON(http.StatusForbidden, echo.Map{"detail": ae.Message})
                    case apperr.KindUnauthenticated:
                        return challenge(c, ae.Message)
                    }
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Internal server error"})
            }

            // Store the principal and a plain user id for downstream
            // middleware (rate-limit keys) and handlers.
            c.Set(PrincipalKey, principal)
            c.Set("user_id", strconv.FormatInt(principal.ID, 10))
            return next(c)
        }
    }
}

// challenge writes the 401 response with the Bearer challenge header
// required by the token transport contract.
func challenge(c echo.Context, msg string) error {
    c.Response().Header().Set("WWW-Authenticate", "Bearer")
    return c.JSON(http.StatusUnauthorized, echo.Map{"detail": msg})
}

package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/health-record-service/internal/auth"
	"github.com/iliyamo/health-record-service/internal/entity"
	"github.com/iliyamo/health-record-service/internal/handler"
	"github.com/iliyamo/health-record-service/internal/middleware"
	"github.com/iliyamo/health-record-service/internal/repository"
)

// RegisterRoutes registers the unauthenticated service endpoints: the
// welcome message and the health check used by load balancers and
// monitoring systems.
func RegisterRoutes(e *echo.Echo, version string) {
	e.GET("/", handler.Root)
	e.GET("/health", handler.Health(version))
}

// RegisterAuth registers the credential endpoints. Registration and login
// do not require an existing session; every protected route elsewhere
// expects the bearer token these endpoints issue.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterResources mounts the uniform CRUD contract for every descriptor
// in the registry. Each resource group runs the authentication gate before
// any handler; the handlers themselves are shared, parameterized by the
// descriptor.
func RegisterResources(e *echo.Echo, db *sql.DB, eng *repository.Engine, reg *entity.Registry, svc *auth.Service, audit handler.AuditFunc) {
	gate := middleware.Authenticate(svc)
	for _, d := range reg.All() {
		h := handler.NewResourceHandler(db, eng, d, audit)
		g := e.Group(d.Path, gate)
		g.POST("/", h.Create)
		g.GET("/", h.List)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}
}

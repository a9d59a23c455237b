package handler

// resource.go is the one handler every resource family shares. A
// ResourceHandler is a descriptor bound to the generic engine: the same
// five routes serve patients, appointments, claims and every other table,
// so no per-entity handler code exists anywhere in the service.

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/health-record-service/internal/apperr"
	"github.com/iliyamo/health-record-service/internal/entity"
	"github.com/iliyamo/health-record-service/internal/middleware"
	"github.com/iliyamo/health-record-service/internal/queue"
	"github.com/iliyamo/health-record-service/internal/repository"
)

// AuditFunc publishes an entity-change event. A nil AuditFunc disables
// audit publishing (tests, brokerless deployments).
type AuditFunc func(ctx context.Context, ev queue.EntityChangedEvent) error

// ResourceHandler serves the uniform CRUD contract for one descriptor.
type ResourceHandler struct {
	DB     *sql.DB
	Engine *repository.Engine
	Desc   *entity.Descriptor
	Audit  AuditFunc
}

func NewResourceHandler(db *sql.DB, eng *repository.Engine, d *entity.Descriptor, audit AuditFunc) *ResourceHandler {
	if db == nil || eng == nil || d == nil {
		panic("nil dependency passed to NewResourceHandler")
	}
	return &ResourceHandler{DB: db, Engine: eng, Desc: d, Audit: audit}
}

// Create validates references and inserts a record.
func (h *ResourceHandler) Create(c echo.Context) error {
	var input entity.Record
	if err := c.Bind(&input); err != nil {
		return writeError(c, apperr.Validation("invalid request body"))
	}

	ctx, cancel := opContext(c)
	defer cancel()

	uow, err := repository.Begin(ctx, h.DB)
	if err != nil {
		return writeError(c, err)
	}
	defer uow.Rollback()

	rec, err := h.Engine.Create(ctx, uow, h.Desc, input)
	if err != nil {
		return writeError(c, err)
	}
	if err := uow.Commit(); err != nil {
		return writeError(c, err)
	}
	h.publishAudit(c, rec["id"].(int64), "created")
	return c.JSON(http.StatusOK, rec)
}

// List returns a paginated window with optional equality filters and
// relation expansion.
func (h *ResourceHandler) List(c echo.Context) error {
	q := repository.ListQuery{
		Skip:    intParam(c, "skip", 0),
		Limit:   intParam(c, "limit", 100),
		Expand:  expandParam(c),
		Filters: map[string]any{},
	}
	for _, f := range h.Desc.Fields {
		if v := c.QueryParam(f.Name); v != "" {
			q.Filters[f.Name] = v
		}
	}

	ctx, cancel := opContext(c)
	defer cancel()

	uow, err := repository.Begin(ctx, h.DB)
	if err != nil {
		return writeError(c, err)
	}
	defer uow.Rollback()

	recs, err := h.Engine.List(ctx, uow, h.Desc, q)
	if err != nil {
		return writeError(c, err)
	}
	if err := uow.Commit(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, recs)
}

// Get returns a single record, expanding requested relations one level.
func (h *ResourceHandler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := opContext(c)
	defer cancel()

	uow, err := repository.Begin(ctx, h.DB)
	if err != nil {
		return writeError(c, err)
	}
	defer uow.Rollback()

	rec, err := h.Engine.Get(ctx, uow, h.Desc, id, expandParam(c))
	if err != nil {
		return writeError(c, err)
	}
	if err := uow.Commit(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Update applies a partial merge of the supplied fields.
func (h *ResourceHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var input entity.Record
	if err := c.Bind(&input); err != nil {
		return writeError(c, apperr.Validation("invalid request body"))
	}

	ctx, cancel := opContext(c)
	defer cancel()

	uow, err := repository.Begin(ctx, h.DB)
	if err != nil {
		return writeError(c, err)
	}
	defer uow.Rollback()

	rec, err := h.Engine.Update(ctx, uow, h.Desc, id, input)
	if err != nil {
		return writeError(c, err)
	}
	if err := uow.Commit(); err != nil {
		return writeError(c, err)
	}
	h.publishAudit(c, id, "updated")
	return c.JSON(http.StatusOK, rec)
}

// Delete removes a record under the reject-if-referenced policy.
func (h *ResourceHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := opContext(c)
	defer cancel()

	uow, err := repository.Begin(ctx, h.DB)
	if err != nil {
		return writeError(c, err)
	}
	defer uow.Rollback()

	if err := h.Engine.Delete(ctx, uow, h.Desc, id); err != nil {
		return writeError(c, err)
	}
	if err := uow.Commit(); err != nil {
		return writeError(c, err)
	}
	h.publishAudit(c, id, "deleted")
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("%s deleted successfully", h.Desc.Label),
	})
}

// publishAudit emits an entity-change event off the request path. Publish
// failures are logged by the publisher and never affect the response.
func (h *ResourceHandler) publishAudit(c echo.Context, id int64, action string) {
	if h.Audit == nil {
		return
	}
	actor := ""
	if p, ok := c.Get(middleware.PrincipalKey).(repository.User); ok {
		actor = p.Username
	}
	ev := queue.EntityChangedEvent{
		Resource: h.Desc.Table,
		EntityID: id,
		Action:   action,
		Actor:    actor,
		At:       time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = h.Audit(context.Background(), ev) }()
}

func opContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

func intParam(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func expandParam(c echo.Context) []string {
	raw := c.QueryParam("expand")
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

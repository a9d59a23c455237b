package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/health-record-service/internal/auth"
	"github.com/iliyamo/health-record-service/internal/database"
	"github.com/iliyamo/health-record-service/internal/entity"
	"github.com/iliyamo/health-record-service/internal/handler"
	"github.com/iliyamo/health-record-service/internal/repository"
	"github.com/iliyamo/health-record-service/internal/router"
)

// newTestServer wires the full HTTP surface over an in-memory SQLite store,
// exactly as the server entry point does, minus Redis and the broker.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	reg := entity.DefaultRegistry()
	require.NoError(t, database.Migrate(context.Background(), db, "sqlite3", reg))

	users := repository.NewUserRepo(db)
	svc := auth.NewService(users, "test-secret", 30*time.Minute, 4)

	e := echo.New()
	router.RegisterRoutes(e, "1.0.0")
	router.RegisterAuth(e, handler.NewAuthHandler(svc))
	router.RegisterResources(e, db, repository.NewEngine(reg), reg, svc, nil)
	return e
}

func doJSON(e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var s []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s), "body: %s", rec.Body.String())
	return s
}

// loginAs registers (if needed) and logs in, returning a bearer token.
func loginAs(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()
	reg := doJSON(e, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "pw123",
	})
	require.Equal(t, http.StatusOK, reg.Code, reg.Body.String())

	login := doJSON(e, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "pw123",
	})
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())
	body := decode(t, login)
	assert.Equal(t, "bearer", body["token_type"])
	return body["access_token"].(string)
}

func TestHealthAndRoot(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])

	rec = doJSON(e, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)

	first := doJSON(e, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "a@example.com", "username": "alice", "password": "pw",
	})
	require.Equal(t, http.StatusOK, first.Code)
	body := decode(t, first)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, true, body["is_active"])
	assert.NotContains(t, body, "password")

	second := doJSON(e, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "a@example.com", "username": "alice2", "password": "pw",
	})
	require.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, "Email already registered", decode(t, second)["detail"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	loginAs(t, e, "bob")

	rec := doJSON(e, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "bob", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect username or password", decode(t, rec)["detail"])
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/patients/", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", decode(t, rec)["detail"])
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec = doJSON(e, http.MethodGet, "/patients/", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Could not validate credentials", decode(t, rec)["detail"])
}

func TestAppointmentRejectsUnknownPatient(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	token := loginAs(t, e, "carol")

	rec := doJSON(e, http.MethodPost, "/appointments/", token, map[string]any{
		"patient_id":           999,
		"doctor_id":            999,
		"appointment_datetime": "2026-09-01T10:00:00",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Patient not found", decode(t, rec)["detail"])

	list := doJSON(e, http.MethodGet, "/appointments/", token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Empty(t, decodeList(t, list), "failed create must leave no row behind")
}

func TestResourceLifecycle(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	token := loginAs(t, e, "dave")

	patient := doJSON(e, http.MethodPost, "/patients/", token, map[string]any{
		"first_name":    "Ada",
		"last_name":     "Smith",
		"date_of_birth": "1990-05-01",
		"gender":        "female",
	})
	require.Equal(t, http.StatusOK, patient.Code, patient.Body.String())
	pid := decode(t, patient)["id"].(float64)

	doctor := doJSON(e, http.MethodPost, "/doctors/", token, map[string]any{
		"first_name":     "Grace",
		"last_name":      "Jones",
		"specialization": "cardiology",
		"license_number": "LIC-1",
	})
	require.Equal(t, http.StatusOK, doctor.Code, doctor.Body.String())
	did := decode(t, doctor)["id"].(float64)

	appt := doJSON(e, http.MethodPost, "/appointments/", token, map[string]any{
		"patient_id":           pid,
		"doctor_id":            did,
		"appointment_datetime": "2026-09-01T10:00:00",
	})
	require.Equal(t, http.StatusOK, appt.Code, appt.Body.String())
	apptBody := decode(t, appt)
	aid := apptBody["id"].(float64)
	assert.Equal(t, float64(30), apptBody["duration_minutes"])
	assert.Equal(t, "scheduled", apptBody["status"])

	// Pagination window of one.
	list := doJSON(e, http.MethodGet, "/appointments/?skip=0&limit=1", token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decodeList(t, list), 1)

	// Expansion embeds the referenced patient one level deep.
	get := doJSON(e, http.MethodGet, fmt.Sprintf("/appointments/%d?expand=patient", int(aid)), token, nil)
	require.Equal(t, http.StatusOK, get.Code)
	embedded, ok := decode(t, get)["patient"].(map[string]any)
	require.True(t, ok, "expanded patient should be an object")
	assert.Equal(t, "Ada", embedded["first_name"])

	// Partial update touches only the supplied field.
	upd := doJSON(e, http.MethodPut, fmt.Sprintf("/appointments/%d", int(aid)), token, map[string]any{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, upd.Code)
	updBody := decode(t, upd)
	assert.Equal(t, "completed", updBody["status"])
	assert.Equal(t, float64(30), updBody["duration_minutes"])
	assert.NotNil(t, updBody["updated_at"])

	// Deleting the patient is rejected while the appointment references it.
	del := doJSON(e, http.MethodDelete, fmt.Sprintf("/patients/%d", int(pid)), token, nil)
	require.Equal(t, http.StatusConflict, del.Code)
	assert.Contains(t, decode(t, del)["detail"], "Cannot delete patient")

	del = doJSON(e, http.MethodDelete, fmt.Sprintf("/appointments/%d", int(aid)), token, nil)
	require.Equal(t, http.StatusOK, del.Code)
	assert.Equal(t, "Appointment deleted successfully", decode(t, del)["message"])

	del = doJSON(e, http.MethodDelete, fmt.Sprintf("/patients/%d", int(pid)), token, nil)
	require.Equal(t, http.StatusOK, del.Code)

	get = doJSON(e, http.MethodGet, fmt.Sprintf("/patients/%d", int(pid)), token, nil)
	require.Equal(t, http.StatusNotFound, get.Code)
	assert.Equal(t, "Patient not found", decode(t, get)["detail"])
}

func TestListFilterByField(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	token := loginAs(t, e, "erin")

	for _, name := range []string{"Ada", "Grace"} {
		rec := doJSON(e, http.MethodPost, "/patients/", token, map[string]any{
			"first_name":    name,
			"last_name":     "Smith",
			"date_of_birth": "1990-05-01",
			"gender":        "female",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	list := doJSON(e, http.MethodGet, "/patients/?first_name=Grace", token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	rows := decodeList(t, list)
	require.Len(t, rows, 1)
	assert.Equal(t, "Grace", rows[0]["first_name"])
}

func TestInvalidIDParam(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	token := loginAs(t, e, "frank")

	rec := doJSON(e, http.MethodGet, "/patients/abc", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", decode(t, rec)["detail"])
}

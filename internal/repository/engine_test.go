package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/health-record-service/internal/apperr"
	"github.com/iliyamo/health-record-service/internal/database"
	"github.com/iliyamo/health-record-service/internal/entity"
)

func newTestEngine(t *testing.T) (*Engine, *sql.DB, *entity.Registry) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	reg := entity.DefaultRegistry()
	require.NoError(t, database.Migrate(context.Background(), db, "sqlite3", reg))
	return NewEngine(reg), db, reg
}

func begin(t *testing.T, db *sql.DB) *UnitOfWork {
	t.Helper()
	uow, err := Begin(context.Background(), db)
	require.NoError(t, err)
	return uow
}

func descriptor(t *testing.T, reg *entity.Registry, table string) *entity.Descriptor {
	t.Helper()
	d, ok := reg.ByTable(table)
	require.True(t, ok, "descriptor for %s", table)
	return d
}

// seedPatient and seedDoctor insert minimal valid rows and return their ids.
func seedPatient(t *testing.T, eng *Engine, uow *UnitOfWork, reg *entity.Registry, first string) int64 {
	t.Helper()
	rec, err := eng.Create(context.Background(), uow, descriptor(t, reg, "patients"), entity.Record{
		"first_name":    first,
		"last_name":     "Smith",
		"date_of_birth": "1990-05-01",
		"gender":        "female",
	})
	require.NoError(t, err)
	return rec["id"].(int64)
}

func seedDoctor(t *testing.T, eng *Engine, uow *UnitOfWork, reg *entity.Registry, first string) int64 {
	t.Helper()
	rec, err := eng.Create(context.Background(), uow, descriptor(t, reg, "doctors"), entity.Record{
		"first_name":     first,
		"last_name":      "Jones",
		"specialization": "cardiology",
		"license_number": "LIC-" + first,
	})
	require.NoError(t, err)
	return rec["id"].(int64)
}

func TestCreateRejectsMissingReference(t *testing.T) {
	t.Parallel()
	eng, db, reg := newTestEngine(t)
	ctx := context.Background()

	uow := begin(t, db)
	defer uow.Rollback()

	_, err := eng.Create(ctx, uow, descriptor(t, reg, "appointments"), entity.Record{
		"patient_id":           int64(999),
		"doctor_id":            int64(999),
		"appointment_datetime": "2026-09-01T10:00:00",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.EqualError(t, err, "Patient not found")
	require.NoError(t, uow.Commit())

	// The failed create must not have written a row.
	uow = begin(t, db)
	defer uow.Rollback()
	rows, err := eng.List(ctx, uow, descriptor(t, reg, "appointments"), ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreateAppliesDefaultsAndRequired(t *testing.T) {
	t.Parallel()
	eng, db, reg := newTestEngine(t)
	ctx := context.Background()

	uow := begin(t, db)
	defer uow.Rollback()

	pid := seedPatient(t, eng, uow, reg, "Ada")
	did := seedDoctor(t, eng, uow, reg, "Grace")

	appt, err := eng.Create(ctx, uow, descriptor(t, reg, "appointments"), entity.Record{
		"patient_id":           pid,
		"doctor_id":            did,
		"appointment_datetime": "2026-09-01T10:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), appt["duration_minutes"])
	assert.Equal(t, "scheduled", appt["status"])
	assert.NotNil(t, appt["created_at"])
	assert.Nil(t, appt["updated_at"])

	_, err = eng.Create(ctx, uow, descriptor(t, reg, "appointments"), entity.Record{
		"doctor_id": did,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdatePartialMerge(t *testing.T) {
	t.Parallel()
	eng, db, reg := newTestEngine(t)
	ctx := context.Background()

	uow := begin(t, db)
	defer uow.Rollback()

	pid := seedPatient(t, eng, uow, reg, "Ada")
	patients := descriptor(t, reg, "patients")

	got, err := eng.Update(ctx, uow, patients, pid, entity.Record{"phone": "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got["phone"])
	assert.Equal(t, "Ada", got["first_name"], "untouched fields keep their values")
	assert.NotNil(t, got["updated_at"])

	// Nulling a required field is rejected; nulling an optional one sticks.
	_, err = eng.Update(ctx, uow, patients, pid, entity.Record{"first_name": nil})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	got, err = eng.Update(ctx, uow, patients, pid, entity.Record{"phone": nil})
	require.NoError(t, err)
	assert.Nil(t, got["phone"])

	_, err = eng.Update(ctx, uow, patients, 4242, entity.Record{"phone": "x"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateRevalidatesReferences(t *testing.T) {
	t.Parallel()
	eng, db, reg := newTestEngine(t)
	ctx := context.Background()

	uow := begin(t, db)
	defer uow.Rollback()

	pid := seedPatient(t, eng, uow, reg, "Ada")
	did := seedDoctor(t, eng, uow, reg, "Grace")
	appt, err := eng.Create(ctx, uow, descriptor(t, reg, "appointments"), entity.Record{
		"patient_id":           pid,
		"doctor_id":            did,
		"appointment_datetime": "2026-09-01T10:00:00",
	})
	require.NoError(t, err)

	_, err = eng.Update(ctx, uow, descriptor(t, reg, "appointments"), appt["id"].(int64),
		entity.Record{"doctor_id": int64(999)})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.EqualError(t, err, "Doctor not found")
}

func TestListPaginationAndFilters(t *testing.T) {
	t.Parallel()
	eng, db, reg := newTestEngine(t)
	ctx := context.Background()

	uow := begin(t, db)
	defer uow.Rollback()

	patients := descriptor(t, reg, "patients")
	for _, name := range []string{"Ada", "Grace", "Edsger", "Barbara", "Donald"} {
		seedPatient(t, eng, uow, reg, name)
	}

	page, err := eng.List(ctx, uow, patients, ListQuery{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Grace", page[0]["first_name"])
	assert.Equal(t, "Edsger", page[1]["first_name"])

	empty, err := eng.List(ctx, uow, patients, ListQuery{Skip: 50})
	require.NoError(t, err)
	assert.Empty(t, empty)

	// Query-string filter values arrive as text and are coerced by kind.
	byName, err := eng.List(ctx, uow, patients, ListQuery{
		Filters: map[string]any{"first_name": "Barbara"},
	})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Barbara", byName[0]["first_name"])

	_, err = eng.List(ctx, uow, patients, ListQuery{
		Filters: map[string]any{"no_such_field": "x"},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGetWithExpand(t *testing.T) {
	t.Parallel()
	eng, db, reg := newTestEngine(t)
	ctx := context.Background()

	uow := begin(t, db)
	defer uow.Rollback()

	pid := seedPatient(t, eng, uow, reg, "Ada")
	did := seedDoctor(t, eng, uow, reg, "Grace")
	appts := descriptor(t, reg, "appointments")
	appt, err := eng.Create(ctx, uow, appts, entity.Record{
		"patient_id":           pid,
		"doctor_id":            did,
		"appointment_datetime": "2026-09-01T10:00:00",
	})
	require.NoError(t, err)

	got, err := eng.Get(ctx, uow, appts, appt["id"].(int64), []string{"patient", "doctor"})
	require.NoError(t, err)
	patient, ok := got["patient"].(entity.Record)
	require.True(t, ok)
	assert.Equal(t, "Ada", patient["first_name"])
	doctor, ok := got["doctor"].(entity.Record)
	require.True(t, ok)
	assert.Equal(t, "Grace", doctor["first_name"])

	_, err = eng.Get(ctx, uow, appts, appt["id"].(int64), []string{"nonsense"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteRejectsWhileReferenced(t *testing.T) {
	t.Parallel()
	eng, db, reg := newTestEngine(t)
	ctx := context.Background()

	uow := begin(t, db)
	defer uow.Rollback()

	pid := seedPatient(t, eng, uow, reg, "Ada")
	did := seedDoctor(t, eng, uow, reg, "Grace")
	appts := descriptor(t, reg, "appointments")
	appt, err := eng.Create(ctx, uow, appts, entity.Record{
		"patient_id":           pid,
		"doctor_id":            did,
		"appointment_datetime": "2026-09-01T10:00:00",
	})
	require.NoError(t, err)

	err = eng.Delete(ctx, uow, descriptor(t, reg, "patients"), pid)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Removing the referencing row unblocks the delete.
	require.NoError(t, eng.Delete(ctx, uow, appts, appt["id"].(int64)))
	require.NoError(t, eng.Delete(ctx, uow, descriptor(t, reg, "patients"), pid))

	_, err = eng.Get(ctx, uow, descriptor(t, reg, "patients"), pid, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.EqualError(t, err, "Patient not found")
}

func TestDateAndTimeCoercion(t *testing.T) {
	t.Parallel()
	eng, db, reg := newTestEngine(t)
	ctx := context.Background()

	uow := begin(t, db)
	defer uow.Rollback()

	patients := descriptor(t, reg, "patients")
	_, err := eng.Create(ctx, uow, patients, entity.Record{
		"first_name":    "Ada",
		"last_name":     "Smith",
		"date_of_birth": "01/05/1990",
		"gender":        "female",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	pid := seedPatient(t, eng, uow, reg, "Ada")
	did := seedDoctor(t, eng, uow, reg, "Grace")

	when := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	appt, err := eng.Create(ctx, uow, descriptor(t, reg, "appointments"), entity.Record{
		"patient_id":           pid,
		"doctor_id":            did,
		"appointment_datetime": when.Format(time.RFC3339),
	})
	require.NoError(t, err)
	got, ok := appt["appointment_datetime"].(time.Time)
	require.True(t, ok)
	assert.True(t, got.Equal(when))
}

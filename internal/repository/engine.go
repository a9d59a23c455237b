// Package repository contains data access logic separated from HTTP
// handlers. The Engine implements create/read/update/delete/list once,
// driven by entity descriptors, so resource families share a single
// integrity-checked code path instead of duplicating it per table.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/health-record-service/internal/apperr"
	"github.com/iliyamo/health-record-service/internal/entity"
)

// ListQuery carries the windowing, filtering and expansion options of a
// list operation. Filters are equality matches on declared fields; values
// may arrive as query-string text and are coerced by field kind.
type ListQuery struct {
	Skip    int
	Limit   int
	Filters map[string]any
	Expand  []string
}

// Engine runs generic CRUD operations against the registered descriptors.
// All methods operate inside a caller-provided UnitOfWork; the engine
// never commits or rolls back itself.
type Engine struct {
	reg *entity.Registry
}

func NewEngine(reg *entity.Registry) *Engine { return &Engine{reg: reg} }

// Create validates input and every declared foreign key before writing
// anything, then inserts the row and returns it fully populated. The first
// missing reference aborts the call with a not-found error naming the
// referenced entity, and no row is written.
func (e *Engine) Create(ctx context.Context, uow *UnitOfWork, d *entity.Descriptor, input entity.Record) (entity.Record, error) {
	row := make(entity.Record, len(d.Fields))
	for _, f := range d.Fields {
		v, present := input[f.Name]
		if !present || v == nil {
			if f.Default != nil {
				row[f.Name] = f.Default
				continue
			}
			if f.Required {
				return nil, apperr.Validation(fmt.Sprintf("field %q is required", f.Name))
			}
			continue
		}
		cv, err := coerce(f, v)
		if err != nil {
			return nil, err
		}
		row[f.Name] = cv
	}

	if err := e.checkReferences(ctx, uow, d, row); err != nil {
		return nil, err
	}

	cols := []string{}
	args := []any{}
	for _, f := range d.Fields {
		if v, ok := row[f.Name]; ok {
			cols = append(cols, f.Name)
			args = append(args, v)
		}
	}
	cols = append(cols, "created_at")
	args = append(args, time.Now().UTC())

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Table, strings.Join(cols, ", "), placeholders(len(cols)))
	res, err := uow.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return e.readRow(ctx, uow, d, id)
}

// Get returns the record or a not-found error, expanding the requested
// relations one level deep.
func (e *Engine) Get(ctx context.Context, uow *UnitOfWork, d *entity.Descriptor, id int64, expand []string) (entity.Record, error) {
	rec, err := e.readRow(ctx, uow, d, id)
	if err != nil {
		return nil, err
	}
	if err := e.expandRelations(ctx, uow, d, rec, expand); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns a window over the matching rows in ascending id order. A
// skip beyond the end yields an empty slice, never an error.
func (e *Engine) List(ctx context.Context, uow *UnitOfWork, d *entity.Descriptor, q ListQuery) ([]entity.Record, error) {
	skip := q.Skip
	if skip < 0 {
		skip = 0
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	conds := []string{}
	args := []any{}
	for name, raw := range q.Filters {
		f, ok := d.FieldByName(name)
		if !ok {
			return nil, apperr.Validation(fmt.Sprintf("unknown filter field %q", name))
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		conds = append(conds, f.Name+" = ?")
		args = append(args, v)
	}

	query := "SELECT " + strings.Join(selectColumns(d), ", ") + " FROM " + d.Table
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := uow.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Record{}
	for rows.Next() {
		rec, err := scanRecord(d, rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rec := range out {
		if err := e.expandRelations(ctx, uow, d, rec, q.Expand); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update applies a partial merge: only the supplied fields change, and a
// foreign-key field included in the patch is re-validated exactly as on
// create. Fields absent from the input keep their stored values.
func (e *Engine) Update(ctx context.Context, uow *UnitOfWork, d *entity.Descriptor, id int64, input entity.Record) (entity.Record, error) {
	if _, err := e.readRow(ctx, uow, d, id); err != nil {
		return nil, err
	}

	patch := make(entity.Record)
	for name, v := range input {
		f, ok := d.FieldByName(name)
		if !ok {
			continue // unknown and immutable keys (id, timestamps) are ignored
		}
		if v == nil {
			if f.Required {
				return nil, apperr.Validation(fmt.Sprintf("field %q cannot be null", f.Name))
			}
			patch[f.Name] = nil
			continue
		}
		cv, err := coerce(f, v)
		if err != nil {
			return nil, err
		}
		patch[f.Name] = cv
	}

	if err := e.checkReferences(ctx, uow, d, patch); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	for _, f := range d.Fields {
		if v, ok := patch[f.Name]; ok {
			sets = append(sets, f.Name+" = ?")
			args = append(args, v)
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", d.Table, strings.Join(sets, ", "))
	if _, err := uow.tx.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	return e.readRow(ctx, uow, d, id)
}

// Delete removes the record, or fails with a conflict while any other
// registered family still references it. The reject-if-referenced policy
// is applied uniformly; no cascade is ever performed.
func (e *Engine) Delete(ctx context.Context, uow *UnitOfWork, d *entity.Descriptor, id int64) error {
	if _, err := e.readRow(ctx, uow, d, id); err != nil {
		return err
	}
	for _, rr := range e.reg.ReferencingTable(d.Table) {
		q := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? LIMIT 1", rr.Desc.Table, rr.Field)
		var one int
		err := uow.tx.QueryRowContext(ctx, q, id).Scan(&one)
		if err == nil {
			return apperr.Conflict(d.Label, fmt.Sprintf(
				"Cannot delete %s: still referenced by %s", strings.ToLower(d.Label), strings.ToLower(rr.Desc.Label)))
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
	}
	_, err := uow.tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", d.Table), id)
	return err
}

// checkReferences verifies that every declared foreign key present in row
// points at an existing target. Nullable references with no value are
// skipped.
func (e *Engine) checkReferences(ctx context.Context, uow *UnitOfWork, d *entity.Descriptor, row entity.Record) error {
	for _, ref := range d.References {
		v, ok := row[ref.Field]
		if !ok || v == nil {
			continue
		}
		id, ok := v.(int64)
		if !ok {
			return apperr.Validation(fmt.Sprintf("invalid value for field %q", ref.Field))
		}
		var one int
		err := uow.tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT 1 FROM %s WHERE id = ? LIMIT 1", ref.Table), id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound(ref.Label)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// expandRelations embeds the referenced record for each requested relation
// name. Expansion is one level only; a dangling or null reference embeds
// nil.
func (e *Engine) expandRelations(ctx context.Context, uow *UnitOfWork, d *entity.Descriptor, rec entity.Record, expand []string) error {
	for _, name := range expand {
		rel, ok := d.RelationByName(name)
		if !ok {
			return apperr.Validation(fmt.Sprintf("unknown relation %q", name))
		}
		target, ok := e.reg.ByTable(rel.Table)
		if !ok {
			return fmt.Errorf("relation %q targets unregistered table %s", name, rel.Table)
		}
		fk, ok := rec[rel.Field].(int64)
		if !ok {
			rec[rel.Name] = nil
			continue
		}
		child, err := e.readRow(ctx, uow, target, fk)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				rec[rel.Name] = nil
				continue
			}
			return err
		}
		rec[rel.Name] = child
	}
	return nil
}

// readRow fetches one full record by id.
func (e *Engine) readRow(ctx context.Context, uow *UnitOfWork, d *entity.Descriptor, id int64) (entity.Record, error) {
	q := "SELECT " + strings.Join(selectColumns(d), ", ") + " FROM " + d.Table + " WHERE id = ?"
	row := uow.tx.QueryRowContext(ctx, q, id)
	rec, err := scanRecord(d, row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(d.Label)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func selectColumns(d *entity.Descriptor) []string {
	cols := make([]string, 0, len(d.Fields)+3)
	cols = append(cols, "id")
	for _, f := range d.Fields {
		cols = append(cols, f.Name)
	}
	return append(cols, "created_at", "updated_at")
}

// scanRecord scans one row through the provided Scan function, building
// typed holders from the descriptor's field kinds.
func scanRecord(d *entity.Descriptor, scan func(...any) error) (entity.Record, error) {
	var id int64
	dest := make([]any, 0, len(d.Fields)+3)
	dest = append(dest, &id)
	holders := make([]any, len(d.Fields))
	for i, f := range d.Fields {
		switch f.Kind {
		case entity.KindInt:
			holders[i] = new(sql.NullInt64)
		case entity.KindFloat:
			holders[i] = new(sql.NullFloat64)
		case entity.KindBool:
			holders[i] = new(sql.NullBool)
		case entity.KindTime:
			holders[i] = new(sql.NullTime)
		default:
			holders[i] = new(sql.NullString)
		}
		dest = append(dest, holders[i])
	}
	created := new(sql.NullTime)
	updated := new(sql.NullTime)
	dest = append(dest, created, updated)

	if err := scan(dest...); err != nil {
		return nil, err
	}

	rec := entity.Record{"id": id}
	for i, f := range d.Fields {
		rec[f.Name] = holderValue(holders[i])
	}
	rec["created_at"] = holderValue(created)
	rec["updated_at"] = holderValue(updated)
	return rec, nil
}

func holderValue(h any) any {
	switch v := h.(type) {
	case *sql.NullString:
		if v.Valid {
			return v.String
		}
	case *sql.NullInt64:
		if v.Valid {
			return v.Int64
		}
	case *sql.NullFloat64:
		if v.Valid {
			return v.Float64
		}
	case *sql.NullBool:
		if v.Valid {
			return v.Bool
		}
	case *sql.NullTime:
		if v.Valid {
			return v.Time.UTC()
		}
	}
	return nil
}

// coerce converts an input value (decoded JSON or query-string text) into
// the canonical Go type for the field kind.
func coerce(f entity.Field, v any) (any, error) {
	switch f.Kind {
	case entity.KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case entity.KindDate:
		if s, ok := v.(string); ok {
			if _, err := time.Parse(entity.DateLayout, s); err == nil {
				return s, nil
			}
		}
	case entity.KindInt:
		switch n := v.(type) {
		case float64:
			if n == math.Trunc(n) {
				return int64(n), nil
			}
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case string:
			if i, err := strconv.ParseInt(n, 10, 64); err == nil {
				return i, nil
			}
		}
	case entity.KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case string:
			if x, err := strconv.ParseFloat(n, 64); err == nil {
				return x, nil
			}
		}
	case entity.KindBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			if x, err := strconv.ParseBool(b); err == nil {
				return x, nil
			}
		}
	case entity.KindTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC(), nil
		case string:
			for _, layout := range entity.TimeLayouts() {
				if ts, err := time.Parse(layout, t); err == nil {
					return ts.UTC(), nil
				}
			}
		}
	}
	return nil, apperr.Validation(fmt.Sprintf("invalid value for field %q", f.Name))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Package entity declares the resource catalog. Each resource family is
// described by a Descriptor rather than hand-written per-entity code: the
// generic repository engine reads the descriptor to validate input, check
// foreign-key references and expand relations. Adding a resource means
// adding a descriptor to the registry, nothing else.
package entity

import "time"

// Kind is the declared type of a domain field. It drives input coercion,
// column DDL and row scanning.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime // timestamp, stored as DATETIME
	KindDate // calendar date, stored and returned as "YYYY-MM-DD"
)

// Field is one declared domain column. Required fields must be present on
// create; Default is applied when a non-required field is omitted.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Default  any
}

// Reference declares a foreign-key field. Label names the referenced
// entity in client-facing messages ("Patient not found").
type Reference struct {
	Field string // local column holding the referenced id
	Table string // referenced table
	Label string // referenced entity label
}

// Relation names a one-level eager expansion available on reads. The
// referenced record is embedded under Name when the client requests it.
type Relation struct {
	Name  string // embed key, e.g. "patient"
	Field string // local foreign-key column
	Table string // referenced table
}

// Descriptor is the full configuration of one resource family.
type Descriptor struct {
	Label      string // singular label, e.g. "Appointment"
	Table      string
	Path       string // route mount point, e.g. "/appointments"
	Fields     []Field
	References []Reference
	Relations  []Relation
}

// Record is a single entity row as handed to and from the engine. Values
// are nil, string, int64, float64, bool or time.Time depending on the
// declared field kind.
type Record = map[string]any

// FieldByName returns the declared field, if any.
func (d *Descriptor) FieldByName(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ReferenceByField returns the reference declared on the given column.
func (d *Descriptor) ReferenceByField(field string) (Reference, bool) {
	for _, r := range d.References {
		if r.Field == field {
			return r, true
		}
	}
	return Reference{}, false
}

// RelationByName returns the named expandable relation.
func (d *Descriptor) RelationByName(name string) (Relation, bool) {
	for _, r := range d.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// ReverseReference names a descriptor and the column through which it
// points at another table. The delete policy walks these.
type ReverseReference struct {
	Desc  *Descriptor
	Field string
}

// Registry holds every descriptor and answers lookups by table, plus the
// reverse-reference question needed by the delete policy.
type Registry struct {
	ordered []*Descriptor
	byTable map[string]*Descriptor
}

// NewRegistry builds a registry from descriptors. Registration order is
// preserved; it determines route and migration order.
func NewRegistry(descs ...*Descriptor) *Registry {
	r := &Registry{byTable: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		r.ordered = append(r.ordered, d)
		r.byTable[d.Table] = d
	}
	return r
}

// All returns descriptors in registration order.
func (r *Registry) All() []*Descriptor { return r.ordered }

// ByTable looks a descriptor up by its table name.
func (r *Registry) ByTable(table string) (*Descriptor, bool) {
	d, ok := r.byTable[table]
	return d, ok
}

// ReferencingTable returns every declared foreign key, across all
// descriptors, that targets the given table.
func (r *Registry) ReferencingTable(table string) []ReverseReference {
	var out []ReverseReference
	for _, d := range r.ordered {
		for _, ref := range d.References {
			if ref.Table == table {
				out = append(out, ReverseReference{Desc: d, Field: ref.Field})
			}
		}
	}
	return out
}

// timeLayouts accepted for KindTime input, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// TimeLayouts exposes the accepted timestamp input formats.
func TimeLayouts() []string { return timeLayouts }

// DateLayout is the single accepted format for KindDate values.
const DateLayout = "2006-01-02"

package document

import (
	"maps"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/ardnew/cmf/schema"
)

// Record maps field names to values. Fields are the non-key variables of a
// schema plus its aspect labels.
type Record map[string]schema.Value

// Clone returns a copy of r. Values are immutable and shared.
func (r Record) Clone() Record { return maps.Clone(r) }

// Table maps groups to records, iterated in group order.
type Table struct {
	m *treemap.Map
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{m: treemap.NewWith(schema.CompareGroups)}
}

// Len returns the number of groups.
func (t *Table) Len() int { return t.m.Size() }

// Get returns the record of g.
func (t *Table) Get(g schema.Group) (Record, bool) {
	v, ok := t.m.Get(g)
	if !ok {
		return nil, false
	}

	return v.(Record), true
}

// Has reports whether g is present.
func (t *Table) Has(g schema.Group) bool {
	_, ok := t.m.Get(g)

	return ok
}

// Put sets the record of g.
func (t *Table) Put(g schema.Group, r Record) { t.m.Put(g, r) }

// Remove deletes g.
func (t *Table) Remove(g schema.Group) { t.m.Remove(g) }

// Each calls fn for every group in order until fn returns false.
func (t *Table) Each(fn func(schema.Group, Record) bool) {
	it := t.m.Iterator()
	for it.Next() {
		if !fn(it.Key().(schema.Group), it.Value().(Record)) {
			return
		}
	}
}

// Groups returns every group in order.
func (t *Table) Groups() []schema.Group {
	groups := make([]schema.Group, 0, t.m.Size())

	t.Each(func(g schema.Group, _ Record) bool {
		groups = append(groups, g)

		return true
	})

	return groups
}

// Clone returns a copy of t with copied records.
func (t *Table) Clone() *Table {
	c := NewTable()

	t.Each(func(g schema.Group, r Record) bool {
		c.Put(g, r.Clone())

		return true
	})

	return c
}

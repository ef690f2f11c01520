// Package symbols wraps the assembler's label->address map with a reverse,
// address->label lookup: given an arbitrary address, find the tightest
// enclosing label and the offset past it. This backs the Controller's
// line_at comment field and its SymbolFor query.
package symbols

import (
	"cmp"
	"sort"

	"github.com/rdleal/intervalst/interval"
)

// Table is a label->address map plus an interval-tree index over the
// half-open ranges between consecutive label addresses, so that any address
// resolves to the label that most recently preceded it.
type Table struct {
	byName map[string]uint32
	tree   *interval.SearchTree[string, uint32]
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{byName: map[string]uint32{}}
}

// entry pairs a label with its address, used only while sorting during
// Load.
type entry struct {
	name string
	addr uint32
}

// Load replaces the table's contents with syms (typically assembler.Program
// .Symbols) and rebuilds the address interval index.
func (t *Table) Load(syms map[string]uint32) {
	t.byName = make(map[string]uint32, len(syms))
	for name, addr := range syms {
		t.byName[name] = addr
	}

	entries := make([]entry, 0, len(syms))
	for name, addr := range syms {
		entries = append(entries, entry{name, addr})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].addr != entries[j].addr {
			return entries[i].addr < entries[j].addr
		}
		return entries[i].name < entries[j].name
	})

	tree := interval.NewSearchTree[string](cmp.Compare[uint32])
	for i, e := range entries {
		hi := ^uint32(0)
		if i+1 < len(entries) && entries[i+1].addr > e.addr {
			hi = entries[i+1].addr - 1
		} else if i+1 < len(entries) {
			// duplicate address: zero-width range, superseded immediately
			hi = e.addr
		}
		_ = tree.Insert(e.addr, hi, e.name)
	}
	t.tree = tree
}

// Address looks up a label by name, case-sensitive as stored by the
// assembler (which itself lower-cases every label it records).
func (t *Table) Address(name string) (uint32, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// All returns a copy of the full name->address map.
func (t *Table) All() map[string]uint32 {
	out := make(map[string]uint32, len(t.byName))
	for k, v := range t.byName {
		out[k] = v
	}
	return out
}

// SymbolFor resolves addr to the label that most recently precedes or
// equals it, and the offset from that label to addr. ok is false if the
// table is empty or addr precedes every label.
func (t *Table) SymbolFor(addr uint32) (name string, offset uint32, ok bool) {
	if t.tree == nil {
		return "", 0, false
	}
	name, ok = t.tree.AnyIntersection(addr, addr)
	if !ok {
		return "", 0, false
	}
	return name, addr - t.byName[name], true
}

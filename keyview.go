package fxindex

import (
	"sort"
	"strings"

	"github.com/shenwei356/natsort"
)

// LenOp is a length-comparison operator usable in a LenCmp predicate.
type LenOp int

const (
	LenEQ LenOp = iota
	LenLT
	LenLE
	LenGT
	LenGE
)

// Predicate is one filter condition over a KeyView, per §4.F/§9's
// language-neutral equivalent of the source's overloaded-operator
// predicates. Exactly one of the three constructors below should be used
// to build a value of this type; the zero value matches everything.
type Predicate struct {
	kind   predicateKind
	op     LenOp
	value  int
	lo, hi int
	prefix string
}

type predicateKind int

const (
	predNone predicateKind = iota
	predLenCmp
	predLenRange
	predNamePrefix
)

// LenCmp builds a length-comparison predicate, e.g. LenCmp(LenGE, 100).
func LenCmp(op LenOp, value int) Predicate {
	return Predicate{kind: predLenCmp, op: op, value: value}
}

// LenRange builds a double-bounded length-range predicate, inclusive.
func LenRange(lo, hi int) Predicate {
	return Predicate{kind: predLenRange, lo: lo, hi: hi}
}

// NamePrefix builds a name-prefix-match predicate.
func NamePrefix(prefix string) Predicate {
	return Predicate{kind: predNamePrefix, prefix: prefix}
}

func (p Predicate) matches(name string, length int) bool {
	switch p.kind {
	case predLenCmp:
		switch p.op {
		case LenEQ:
			return length == p.value
		case LenLT:
			return length < p.value
		case LenLE:
			return length <= p.value
		case LenGT:
			return length > p.value
		case LenGE:
			return length >= p.value
		}
	case predLenRange:
		return length >= p.lo && length <= p.hi
	case predNamePrefix:
		return strings.HasPrefix(name, p.prefix)
	}
	return true
}

// SortKey selects what a KeyView.Sort orders by.
type SortKey int

const (
	SortByID SortKey = iota
	SortByName
	SortByLength
)

// keyRow is the denormalized (name, ordinal, length) triple a KeyView
// iterates and sorts over.
type keyRow struct {
	name   string
	ord    int
	length int64
}

// KeyView is a filterable, sortable view over an engine's identifier
// table (§4.F). It holds its own copy of the (name, ordinal, length) rows;
// Sort and Filter build new row sets eagerly. The zero value is not
// usable; obtain one via Engine.Keys.
type KeyView struct {
	e    *Engine
	rows []keyRow // file order unless Sort has been called
}

// Keys returns a KeyView snapshotting the engine's current record table in
// file order.
func (e *Engine) Keys() (*KeyView, error) {
	if err := e.checkIndexed(); err != nil {
		return nil, err
	}
	rows := make([]keyRow, len(e.store.records))
	for i, r := range e.store.records {
		rows[i] = keyRow{name: r.Name, ord: r.Ord, length: r.SeqLength}
	}
	return &KeyView{e: e, rows: rows}, nil
}

// Len returns the number of identifiers currently in the view.
func (v *KeyView) Len() int { return len(v.rows) }

// At returns the name at position i, negative i counting from the end.
func (v *KeyView) At(i int) (string, error) {
	if i < 0 {
		i += len(v.rows)
	}
	if i < 0 || i >= len(v.rows) {
		return "", ErrOutOfRange
	}
	return v.rows[i].name, nil
}

// Names returns the view's names in its current order.
func (v *KeyView) Names() []string {
	out := make([]string, len(v.rows))
	for i, r := range v.rows {
		out[i] = r.name
	}
	return out
}

// Contains reports whether name is present in the view.
func (v *KeyView) Contains(name string) bool {
	for _, r := range v.rows {
		if r.name == name {
			return true
		}
	}
	return false
}

// Sort returns a new view ordered by key; the receiver is unmodified.
// Sorts are stable (§4.F).
func (v *KeyView) Sort(key SortKey, reverse bool) *KeyView {
	rows := append([]keyRow(nil), v.rows...)
	var less func(i, j int) bool
	switch key {
	case SortByName:
		less = func(i, j int) bool { return natsort.Compare(rows[i].name, rows[j].name) }
	case SortByLength:
		less = func(i, j int) bool { return rows[i].length < rows[j].length }
	default: // SortByID
		less = func(i, j int) bool { return rows[i].ord < rows[j].ord }
	}
	if reverse {
		base := less
		less = func(i, j int) bool { return base(j, i) }
	}
	sort.SliceStable(rows, less)
	return &KeyView{e: v.e, rows: rows}
}

// Filter returns a new view containing only rows matching every predicate
// (conjunction). Matching is computed eagerly against the current row set.
func (v *KeyView) Filter(preds ...Predicate) *KeyView {
	var rows []keyRow
	for _, r := range v.rows {
		ok := true
		for _, p := range preds {
			if !p.matches(r.name, int(r.length)) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, r)
		}
	}
	return &KeyView{e: v.e, rows: rows}
}

// Package value implements the scalar model shared by every report stage:
// a three-state cell (null marker, empty, literal) plus the tolerant
// coercion helpers needed to read LLM-produced JSON whose shape is not
// guaranteed at the boundary.
package value

import "strings"

// NullMarker is the literal token that means "explicitly absent". It is a
// distinct concept from an empty cell, which means "not applicable here":
// a null cell blocks aggregate computation, an empty cell is skipped.
const NullMarker = "null"

// Kind classifies a cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindNull
	KindValue
)

// Cell is one scalar in a report table.
type Cell struct {
	kind Kind
	text string
}

var (
	// Empty is the neutral cell.
	Empty = Cell{kind: KindEmpty}
	// Null is the null-marked cell.
	Null = Cell{kind: KindNull}
)

// NewCell builds a literal cell. Literal "null" input (any casing)
// collapses into the null marker; the empty string collapses into Empty.
func NewCell(text string) Cell {
	if text == "" {
		return Empty
	}
	if IsNullMarker(text) {
		return Null
	}
	return Cell{kind: KindValue, text: text}
}

// FromAny coerces an arbitrary JSON value into a cell via Stringify.
// nil becomes Empty, the literal "null" token becomes Null.
func FromAny(v any) Cell {
	return NewCell(Stringify(v))
}

// FromAnyOrNull is FromAny except that absent values render as the null
// marker instead of an empty cell. Report columns that must distinguish
// "proposal is silent on this" from "not applicable" use this form.
func FromAnyOrNull(v any) Cell {
	c := FromAny(v)
	if c.kind == KindEmpty {
		return Null
	}
	return c
}

// Kind reports the cell's state.
func (c Cell) Kind() Kind { return c.kind }

// IsNull reports whether the cell carries the null marker.
func (c Cell) IsNull() bool { return c.kind == KindNull }

// IsEmpty reports whether the cell is neutral.
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// String renders the cell the way it is written to CSV: the null marker
// for null cells, "" for empty ones, the literal text otherwise.
func (c Cell) String() string {
	switch c.kind {
	case KindNull:
		return NullMarker
	case KindValue:
		return c.text
	default:
		return ""
	}
}

// Number attempts a tolerant numeric parse of the cell's literal.
func (c Cell) Number() (float64, bool) {
	if c.kind != KindValue {
		return 0, false
	}
	return ParseNumber(c.text)
}

// IsNullMarker reports whether s equals the null token, case-insensitively.
// Parse failures are not null: null is an explicit upstream statement.
func IsNullMarker(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), NullMarker)
}

// IsEmptyString reports whether s is the exact empty string.
func IsEmptyString(s string) bool { return s == "" }

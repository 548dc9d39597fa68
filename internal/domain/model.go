package domain

import (
	"slices"
	"strconv"
)

// Pagination is the 0-based page position of one list screen.
// The wire convention is 1-based; the translation happens only at the
// URL codec and the query key builder, never here.
type Pagination struct {
	PageIndex int
	PageSize  int
}

// SortField is one entry of an ordered sort sequence.
type SortField struct {
	Field      string
	Descending bool
}

// FilterKind declares how a screen's filter field is typed on the wire.
type FilterKind int

const (
	FilterString FilterKind = iota
	FilterNumber
	FilterBool
	FilterRange
)

// FilterValue is one active filter constraint. Exactly the kinds the wire
// supports: string, number, boolean, or a from/to range. Implementations are
// comparable so states can be checked with ==.
type FilterValue interface {
	isFilterValue()
}

// StringValue filters by exact or server-interpreted string match.
type StringValue string

// NumberValue filters by a numeric value.
type NumberValue float64

// BoolValue filters by a boolean flag.
type BoolValue bool

// RangeValue filters by an inclusive from/to pair. The bounds stay raw
// strings so dates and numbers round-trip through the URL byte-exact.
type RangeValue struct {
	From string
	To   string
}

func (StringValue) isFilterValue() {}
func (NumberValue) isFilterValue() {}
func (BoolValue) isFilterValue()   {}
func (RangeValue) isFilterValue()  {}

// Filters maps filter field name to its active value. A missing key means
// no constraint; an empty value is never stored.
type Filters map[string]FilterValue

// TableState is the canonical pagination/sort/filter state of one list
// screen. It is transient and owned by the screen's table store.
type TableState struct {
	Pagination Pagination
	Sort       []SortField
	Filters    Filters
}

// Equal reports whether two states are logically identical.
func (s TableState) Equal(other TableState) bool {
	if s.Pagination != other.Pagination {
		return false
	}
	if !slices.Equal(s.Sort, other.Sort) {
		return false
	}
	if len(s.Filters) != len(other.Filters) {
		return false
	}
	for k, v := range s.Filters {
		if ov, ok := other.Filters[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so stores can hand state out without aliasing.
func (s TableState) Clone() TableState {
	out := TableState{Pagination: s.Pagination}
	if s.Sort != nil {
		out.Sort = slices.Clone(s.Sort)
	}
	if s.Filters != nil {
		out.Filters = make(Filters, len(s.Filters))
		for k, v := range s.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// Schema declares, per screen, the permitted sort fields, the typed filter
// fields, and the defaults applied when the URL carries no value. Unknown
// fields arriving from an untrusted source are dropped silently against it.
type Schema struct {
	DefaultPageSize int
	DefaultSort     []SortField
	SortFields      []string
	FilterFields    map[string]FilterKind
}

// AllowsSort reports whether field may appear in a sort sequence.
func (sc Schema) AllowsSort(field string) bool {
	return slices.Contains(sc.SortFields, field)
}

// FilterKindOf returns the declared kind for a filter field.
func (sc Schema) FilterKindOf(field string) (FilterKind, bool) {
	k, ok := sc.FilterFields[field]
	return k, ok
}

// DefaultState is the state a screen renders from an empty query string.
func (sc Schema) DefaultState() TableState {
	return TableState{
		Pagination: Pagination{PageIndex: 0, PageSize: sc.DefaultPageSize},
		Sort:       slices.Clone(sc.DefaultSort),
		Filters:    Filters{},
	}
}

// EncodeFilterValue renders a filter value in its wire form.
func EncodeFilterValue(v FilterValue) string {
	switch fv := v.(type) {
	case StringValue:
		return string(fv)
	case NumberValue:
		return strconv.FormatFloat(float64(fv), 'f', -1, 64)
	case BoolValue:
		return strconv.FormatBool(bool(fv))
	case RangeValue:
		return fv.From + ".." + fv.To
	default:
		return ""
	}
}

// MatchesFilterKind reports whether v's concrete type agrees with a field's
// declared wire kind. A mismatched value has no wire form the field's codec
// would accept back, so callers drop it rather than store it.
func MatchesFilterKind(v FilterValue, kind FilterKind) bool {
	switch v.(type) {
	case StringValue:
		return kind == FilterString
	case NumberValue:
		return kind == FilterNumber
	case BoolValue:
		return kind == FilterBool
	case RangeValue:
		return kind == FilterRange
	default:
		return false
	}
}

// IsEmptyFilterValue reports whether v carries no constraint and must be
// dropped instead of stored or encoded.
func IsEmptyFilterValue(v FilterValue) bool {
	switch fv := v.(type) {
	case nil:
		return true
	case StringValue:
		return fv == ""
	case RangeValue:
		return fv.From == "" && fv.To == ""
	default:
		return false
	}
}

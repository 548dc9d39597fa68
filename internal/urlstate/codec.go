// Package urlstate converts between a screen's TableState and its flat
// query-string representation. Both directions are pure: Decode never fails
// (a screen must always render from a partial or hostile query string), and
// Encode never touches keys that do not belong to the screen's schema.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/simp-lee/consolekit/internal/domain"
)

// Reserved query parameter names used for pagination and sorting, not for
// filtering. Filter fields come from the screen schema.
const (
	keyPage  = "page"
	keyLimit = "limit"
	keySort  = "sort"
)

// Decode parses the raw query into a TableState against the screen schema.
// Unknown keys and unparseable values are ignored, never errored: missing
// page defaults to the first page, missing limit to the schema default,
// missing or invalid sort to the schema's default sort, filters to empty.
// Keys not declared by the schema are left untouched for whoever owns them.
func Decode(q url.Values, schema domain.Schema) domain.TableState {
	state := schema.DefaultState()

	// page is 1-based on the wire, 0-based in state.
	if page, err := strconv.Atoi(q.Get(keyPage)); err == nil && page >= 1 {
		state.Pagination.PageIndex = page - 1
	}

	if limit, err := strconv.Atoi(q.Get(keyLimit)); err == nil && limit >= 1 {
		state.Pagination.PageSize = limit
	}

	if sort := parseSort(q.Get(keySort), schema); len(sort) > 0 {
		state.Sort = sort
	}

	for field, kind := range schema.FilterFields {
		raw := q.Get(field)
		if raw == "" {
			continue
		}
		if v, ok := parseFilterValue(raw, kind); ok {
			state.Filters[field] = v
		}
	}

	return state
}

// Encode produces the next raw query from the given state. It starts from
// prev so keys unrelated to this screen survive verbatim, overwrites the
// screen's own keys, and deletes any key whose state field is now absent or
// empty — a cleared filter disappears from the URL instead of lingering as
// an empty-string artifact.
func Encode(s domain.TableState, prev url.Values, schema domain.Schema) url.Values {
	next := url.Values{}
	for k, vs := range prev {
		next[k] = append([]string(nil), vs...)
	}

	next.Set(keyPage, strconv.Itoa(s.Pagination.PageIndex+1))
	next.Set(keyLimit, strconv.Itoa(s.Pagination.PageSize))

	if len(s.Sort) > 0 {
		next.Set(keySort, formatSort(s.Sort))
	} else {
		next.Del(keySort)
	}

	for field := range schema.FilterFields {
		v, active := s.Filters[field]
		if !active || domain.IsEmptyFilterValue(v) {
			next.Del(field)
			continue
		}
		next.Set(field, domain.EncodeFilterValue(v))
	}

	return next
}

// parseSort parses "field:asc,other:desc" into an ordered sort sequence.
// Entries with unknown fields or directions are dropped silently.
func parseSort(raw string, schema domain.Schema) []domain.SortField {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var sort []domain.SortField
	for _, entry := range strings.Split(raw, ",") {
		field, direction, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			continue
		}
		field = strings.TrimSpace(field)
		direction = strings.ToLower(strings.TrimSpace(direction))
		if direction != "asc" && direction != "desc" {
			continue
		}
		if !schema.AllowsSort(field) {
			continue
		}
		sort = append(sort, domain.SortField{Field: field, Descending: direction == "desc"})
	}
	return sort
}

// formatSort renders a sort sequence in its wire form.
func formatSort(sort []domain.SortField) string {
	parts := make([]string, 0, len(sort))
	for _, sf := range sort {
		direction := "asc"
		if sf.Descending {
			direction = "desc"
		}
		parts = append(parts, sf.Field+":"+direction)
	}
	return strings.Join(parts, ",")
}

// parseFilterValue coerces a raw query value into the field's declared kind.
func parseFilterValue(raw string, kind domain.FilterKind) (domain.FilterValue, bool) {
	switch kind {
	case domain.FilterString:
		return domain.StringValue(raw), true
	case domain.FilterNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false
		}
		return domain.NumberValue(n), true
	case domain.FilterBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, false
		}
		return domain.BoolValue(b), true
	case domain.FilterRange:
		from, to, ok := strings.Cut(raw, "..")
		if !ok || (from == "" && to == "") {
			return nil, false
		}
		return domain.RangeValue{From: from, To: to}, true
	default:
		return nil, false
	}
}

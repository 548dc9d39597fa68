package urlstate

import (
	"net/url"
	"testing"

	"github.com/simp-lee/consolekit/internal/domain"
)

func testSchema() domain.Schema {
	return domain.Schema{
		DefaultPageSize: 20,
		DefaultSort:     []domain.SortField{{Field: "created_at", Descending: true}},
		SortFields:      []string{"name", "salary", "created_at"},
		FilterFields: map[string]domain.FilterKind{
			"name":     domain.FilterString,
			"active":   domain.FilterBool,
			"salary":   domain.FilterNumber,
			"hired":    domain.FilterRange,
			"location": domain.FilterString,
		},
	}
}

func TestDecode_Defaults(t *testing.T) {
	state := Decode(url.Values{}, testSchema())

	if state.Pagination.PageIndex != 0 {
		t.Errorf("PageIndex = %d; want 0", state.Pagination.PageIndex)
	}
	if state.Pagination.PageSize != 20 {
		t.Errorf("PageSize = %d; want 20", state.Pagination.PageSize)
	}
	if len(state.Sort) != 1 || state.Sort[0].Field != "created_at" || !state.Sort[0].Descending {
		t.Errorf("Sort = %v; want default created_at:desc", state.Sort)
	}
	if len(state.Filters) != 0 {
		t.Errorf("Filters = %v; want empty", state.Filters)
	}
}

func TestDecode_PageTranslation(t *testing.T) {
	// page is 1-based on the wire and 0-based in state.
	q := url.Values{"page": {"2"}, "limit": {"10"}}
	state := Decode(q, testSchema())

	if state.Pagination.PageIndex != 1 {
		t.Errorf("PageIndex = %d; want 1", state.Pagination.PageIndex)
	}
	if state.Pagination.PageSize != 10 {
		t.Errorf("PageSize = %d; want 10", state.Pagination.PageSize)
	}
}

func TestDecode_InvalidValuesIgnored(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
	}{
		{"garbage page", url.Values{"page": {"abc"}}},
		{"zero page", url.Values{"page": {"0"}}},
		{"negative page", url.Values{"page": {"-3"}}},
		{"garbage limit", url.Values{"limit": {"x"}}},
		{"zero limit", url.Values{"limit": {"0"}}},
		{"unknown sort field", url.Values{"sort": {"password:asc"}}},
		{"bad sort direction", url.Values{"sort": {"name:sideways"}}},
		{"garbage number filter", url.Values{"salary": {"lots"}}},
		{"garbage bool filter", url.Values{"active": {"maybe"}}},
		{"empty range filter", url.Values{"hired": {".."}}},
	}
	want := testSchema().DefaultState()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Decode(tt.q, testSchema())
			if !state.Equal(want) {
				t.Errorf("Decode(%v) = %+v; want defaults %+v", tt.q, state, want)
			}
		})
	}
}

func TestDecode_UnknownKeysDropped(t *testing.T) {
	q := url.Values{
		"page":     {"3"},
		"passwd":   {"hunter2"},
		"__proto_": {"x"},
	}
	state := Decode(q, testSchema())
	if len(state.Filters) != 0 {
		t.Errorf("unknown keys must not become filters, got %v", state.Filters)
	}
	if state.Pagination.PageIndex != 2 {
		t.Errorf("PageIndex = %d; want 2", state.Pagination.PageIndex)
	}
}

func TestDecode_Filters(t *testing.T) {
	q := url.Values{
		"name":   {"smith"},
		"active": {"true"},
		"salary": {"1250.5"},
		"hired":  {"2024-01-01..2024-12-31"},
	}
	state := Decode(q, testSchema())

	if got := state.Filters["name"]; got != domain.StringValue("smith") {
		t.Errorf("name filter = %v", got)
	}
	if got := state.Filters["active"]; got != domain.BoolValue(true) {
		t.Errorf("active filter = %v", got)
	}
	if got := state.Filters["salary"]; got != domain.NumberValue(1250.5) {
		t.Errorf("salary filter = %v", got)
	}
	if got := state.Filters["hired"]; got != (domain.RangeValue{From: "2024-01-01", To: "2024-12-31"}) {
		t.Errorf("hired filter = %v", got)
	}
}

func TestEncode_PreservesUnrelatedKeys(t *testing.T) {
	schema := testSchema()
	prev := url.Values{"tab": {"details"}, "page": {"5"}}
	state := schema.DefaultState()
	state.Pagination.PageIndex = 2

	next := Encode(state, prev, schema)

	if got := next.Get("tab"); got != "details" {
		t.Errorf("unrelated key tab = %q; want preserved verbatim", got)
	}
	if got := next.Get("page"); got != "3" {
		t.Errorf("page = %q; want overwritten to 3", got)
	}
}

func TestEncode_ClearedFilterRemovesKey(t *testing.T) {
	schema := testSchema()
	prev := url.Values{"name": {"smith"}, "active": {"true"}}

	state := schema.DefaultState()
	state.Filters["active"] = domain.BoolValue(true)
	// name cleared: not present in state at all.

	next := Encode(state, prev, schema)

	if _, present := next["name"]; present {
		t.Errorf("cleared filter must disappear, got name=%q", next.Get("name"))
	}
	if got := next.Get("active"); got != "true" {
		t.Errorf("active = %q; want true", got)
	}

	// An explicitly empty value is treated the same as absent.
	state.Filters["name"] = domain.StringValue("")
	next = Encode(state, prev, schema)
	if _, present := next["name"]; present {
		t.Error("empty-string filter must not be encoded")
	}
}

func TestEncode_EmptySortRemovesKey(t *testing.T) {
	schema := testSchema()
	prev := url.Values{"sort": {"name:asc"}}
	state := schema.DefaultState()
	state.Sort = nil

	next := Encode(state, prev, schema)
	if _, present := next["sort"]; present {
		t.Errorf("empty sort must delete the key, got %q", next.Get("sort"))
	}
}

func TestRoundTrip(t *testing.T) {
	schema := testSchema()
	states := []domain.TableState{
		schema.DefaultState(),
		{
			Pagination: domain.Pagination{PageIndex: 4, PageSize: 50},
			Sort:       []domain.SortField{{Field: "name", Descending: false}},
			Filters:    domain.Filters{"name": domain.StringValue("jones")},
		},
		{
			Pagination: domain.Pagination{PageIndex: 0, PageSize: 10},
			Sort: []domain.SortField{
				{Field: "salary", Descending: true},
				{Field: "name", Descending: false},
			},
			Filters: domain.Filters{
				"active": domain.BoolValue(false),
				"salary": domain.NumberValue(999),
				"hired":  domain.RangeValue{From: "2023-06-01", To: ""},
			},
		},
	}
	priors := []url.Values{
		{},
		{"tab": {"x"}, "name": {"stale"}},
		{"page": {"9"}, "sort": {"name:desc"}},
	}

	for _, s := range states {
		for _, prior := range priors {
			got := Decode(Encode(s, prior, schema), schema)
			if !got.Equal(s) {
				t.Errorf("round trip lost state:\n  in:  %+v\n  out: %+v\n  prior: %v", s, got, prior)
			}
		}
	}
}

func TestEncodeIsCanonical(t *testing.T) {
	// Re-encoding a decoded query must reproduce the screen's keys exactly
	// when the query was itself produced by a prior Encode.
	schema := testSchema()
	state := domain.TableState{
		Pagination: domain.Pagination{PageIndex: 1, PageSize: 25},
		Sort:       []domain.SortField{{Field: "salary", Descending: true}},
		Filters:    domain.Filters{"name": domain.StringValue("lee")},
	}

	q1 := Encode(state, url.Values{"tab": {"audit"}}, schema)
	q2 := Encode(Decode(q1, schema), q1, schema)

	if q1.Encode() != q2.Encode() {
		t.Errorf("encode not canonical:\n  q1 = %v\n  q2 = %v", q1, q2)
	}
}

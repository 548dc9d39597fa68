// Package querykey derives the deterministic cache key and server-bound
// request parameters for a table state. The key is canonical: logically
// identical requests compare equal regardless of map iteration order or how
// the state was assembled.
package querykey

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/simp-lee/consolekit/internal/domain"
)

// Scope is the externally supplied constraint merged into every request for
// a scoped resource (e.g. an operator's assigned location). Required marks
// values the endpoint cannot be called without.
type Scope struct {
	Values   map[string]string
	Required []string
}

// Key identifies one logical request. Canonical is the cache key; Params is
// the query the request pipeline sends.
type Key struct {
	Resource  string
	Canonical string
	Params    url.Values
}

// Build derives the key and request params for resource from the given
// state and scope. Filters with empty values are omitted — the server never
// sees field="". A required scope value that is absent yields
// domain.ErrScopeRequired and the caller must suppress the fetch entirely.
func Build(resource string, s domain.TableState, scope Scope) (Key, error) {
	for _, name := range scope.Required {
		if strings.TrimSpace(scope.Values[name]) == "" {
			return Key{}, domain.ErrScopeRequired
		}
	}

	params := url.Values{}
	// page is 1-based on the wire, pageIndex 0-based in state; this is the
	// only translation point besides the URL codec.
	params.Set("page", strconv.Itoa(s.Pagination.PageIndex+1))
	params.Set("limit", strconv.Itoa(s.Pagination.PageSize))

	if len(s.Sort) > 0 {
		fields := make([]string, 0, len(s.Sort))
		orders := make([]string, 0, len(s.Sort))
		for _, sf := range s.Sort {
			fields = append(fields, sf.Field)
			if sf.Descending {
				orders = append(orders, "desc")
			} else {
				orders = append(orders, "asc")
			}
		}
		params.Set("sortBy", strings.Join(fields, ","))
		params.Set("sortOrder", strings.Join(orders, ","))
	}

	for field, v := range s.Filters {
		if domain.IsEmptyFilterValue(v) {
			continue
		}
		params.Set(field, domain.EncodeFilterValue(v))
	}

	for name, value := range scope.Values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		params.Set(name, value)
	}

	return Key{
		Resource:  resource,
		Canonical: canonical(resource, params),
		Params:    params,
	}, nil
}

// ProfileKey is the fixed, session-scoped key for the profile fetch. A
// constant key guarantees at most one in-flight fetch per session no matter
// how many protected screens mount concurrently.
func ProfileKey() Key {
	return Key{
		Resource:  "session",
		Canonical: "session|profile",
		Params:    url.Values{},
	}
}

// Prefix returns the invalidation prefix covering every key of a resource.
func Prefix(resource string) string {
	return resource + "|"
}

// canonical serializes params with sorted keys, so two key builds with
// field-order-permuted but logically identical inputs compare equal.
func canonical(resource string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(resource)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}

package pkg

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/consolekit/internal/domain"
	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// reservedParams lists query parameter names used for pagination/sorting, not for filtering.
var reservedParams = map[string]bool{
	"page":      true,
	"limit":     true,
	"sortBy":    true,
	"sortOrder": true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ListQuery is the parsed form of a list request: 1-based page, limit,
// parallel sortBy/sortOrder lists, and raw filter values keyed by field.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    []string
	SortOrder []string
	Filters   map[string]string
}

// ParseListQuery extracts pagination, sorting, and filtering parameters from
// query params. sortBy and sortOrder are comma-separated parallel lists.
// Every non-reserved, non-empty query parameter is collected as a filter;
// allow-listing happens in the Sort and Filter scopes.
func ParseListQuery(c *gin.Context) ListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	sortBy := splitList(c.Query("sortBy"))
	sortOrder := splitList(c.Query("sortOrder"))

	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filters[key] = values[0]
		}
	}

	return ListQuery{
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Filters:   filters,
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the list query.
func Paginate(q ListQuery) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset := (q.Page - 1) * q.Limit
		return db.Offset(offset).Limit(q.Limit)
	}
}

// Sort returns a GORM scope that applies ORDER BY based on the list query.
// Only field names present in the allowed list are accepted; others are silently ignored.
// Field names are validated against a strict pattern to prevent SQL injection.
func Sort(q ListQuery, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for i, field := range q.SortBy {
			direction := "asc"
			if i < len(q.SortOrder) {
				direction = strings.TrimSpace(strings.ToLower(q.SortOrder[i]))
			}
			if direction != "asc" && direction != "desc" {
				continue
			}
			if !validFieldName.MatchString(field) {
				continue
			}
			if !slices.Contains(allowed, field) {
				continue
			}
			db = db.Order(field + " " + direction)
		}
		return db
	}
}

// Filter returns a GORM scope that applies WHERE conditions based on the list
// query. Only fields declared in kinds are applied; others are silently
// ignored. The condition depends on the declared kind: strings match with
// LIKE, booleans and numbers match exactly, and ranges use the "from..to"
// form with either end optional.
func Filter(q ListQuery, kinds map[string]domain.FilterKind) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range q.Filters {
			kind, ok := kinds[key]
			if !ok || !validFieldName.MatchString(key) {
				continue
			}

			switch kind {
			case domain.FilterString:
				db = db.Where(key+" LIKE ?", "%"+value+"%")
			case domain.FilterBool:
				b, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}
				db = db.Where(key+" = ?", b)
			case domain.FilterNumber:
				n, err := strconv.ParseFloat(value, 64)
				if err != nil {
					continue
				}
				db = db.Where(key+" = ?", n)
			case domain.FilterRange:
				from, to, ok := strings.Cut(value, "..")
				if !ok {
					continue
				}
				if from != "" {
					db = db.Where(key+" >= ?", from)
				}
				if to != "" {
					db = db.Where(key+" <= ?", to)
				}
			}
		}
		return db
	}
}

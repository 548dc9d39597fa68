package employee

import (
	"context"
	"errors"
	"strings"

	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/pkg"
	"gorm.io/gorm"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields = []string{"id", "name", "salary", "hired_at", "created_at"}
	filterKinds       = map[string]domain.FilterKind{
		"name":   domain.FilterString,
		"email":  domain.FilterString,
		"active": domain.FilterBool,
		"salary": domain.FilterRange,
	}
)

// Repository is the persistence port for employees.
type Repository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id uint) (*Employee, error)
	List(ctx context.Context, q pkg.ListQuery) (*domain.PageResult[Employee], error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id uint) error
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository backed by the given GORM database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new employee into the database.
func (r *repository) Create(ctx context.Context, e *Employee) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves an employee by its primary key.
func (r *repository) GetByID(ctx context.Context, id uint) (*Employee, error) {
	var e Employee
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

// List returns a paginated, sorted, and filtered page of employees.
// location_id is the external scope field and matches exactly; the remaining
// filters go through the kind-aware scope.
func (r *repository) List(ctx context.Context, q pkg.ListQuery) (*domain.PageResult[Employee], error) {
	base := r.db.WithContext(ctx).Model(&Employee{})
	if loc, ok := q.Filters["location_id"]; ok {
		base = base.Where("location_id = ?", loc)
	}
	base = base.Scopes(pkg.Filter(q, filterKinds))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	var employees []Employee
	if err := base.Scopes(
		pkg.Paginate(q),
		pkg.Sort(q, allowedSortFields),
	).Find(&employees).Error; err != nil {
		return nil, mapError(err)
	}

	return domain.NewPageResult(employees, total, q.Page, q.Limit), nil
}

// Update saves changes to an existing employee.
func (r *repository) Update(ctx context.Context, e *Employee) error {
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// Delete removes an employee by ID.
func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Employee{}, id)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapError converts GORM errors to tagged domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.TagDuplicate, "already exists", err)
	}
	return domain.NewAppError(domain.TagDatabase, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

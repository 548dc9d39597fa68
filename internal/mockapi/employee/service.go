package employee

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/pkg"
	"gorm.io/gorm"
)

// Service holds the employee business operations.
type Service interface {
	Create(ctx context.Context, input Input) (*Employee, error)
	Get(ctx context.Context, id uint) (*Employee, error)
	List(ctx context.Context, q pkg.ListQuery) (*domain.PageResult[Employee], error)
	Update(ctx context.Context, id uint, input Input) (*Employee, error)
	Delete(ctx context.Context, id uint) error
}

// Input carries the writable employee fields.
type Input struct {
	Name       string
	Email      string
	Active     bool
	Salary     float64
	LocationID string
	HiredAt    time.Time
}

// service implements Service.
type service struct {
	db   *gorm.DB
	repo Repository
}

// NewService creates a Service with the given database and repository.
func NewService(db *gorm.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

// Create validates input, builds an Employee, and persists it.
func (s *service) Create(ctx context.Context, input Input) (*Employee, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	e := &Employee{
		Name:       input.Name,
		Email:      input.Email,
		Active:     input.Active,
		Salary:     input.Salary,
		LocationID: strings.TrimSpace(input.LocationID),
		HiredAt:    input.HiredAt,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get retrieves an employee by ID.
func (s *service) Get(ctx context.Context, id uint) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns one page of employees.
func (s *service) List(ctx context.Context, q pkg.ListQuery) (*domain.PageResult[Employee], error) {
	return s.repo.List(ctx, q)
}

// Update loads the existing employee, applies changes, and persists them in
// one transaction.
func (s *service) Update(ctx context.Context, id uint, input Input) (*Employee, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated *Employee
	err := pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		e.Name = input.Name
		e.Email = input.Email
		e.Active = input.Active
		e.Salary = input.Salary
		e.LocationID = strings.TrimSpace(input.LocationID)
		e.HiredAt = input.HiredAt
		if err := repo.Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an employee by ID.
func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// validateInput checks the writable fields beyond what request binding covers.
func validateInput(input Input) error {
	if utf8.RuneCountInString(input.Name) < 2 {
		return domain.NewAppError(domain.TagValidation, "name must be at least 2 characters", nil)
	}
	if utf8.RuneCountInString(input.Name) > 100 {
		return domain.NewAppError(domain.TagValidation, "name must be at most 100 characters", nil)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return domain.NewAppError(domain.TagValidation, "email must be a valid email address", nil)
	}
	if input.Salary < 0 {
		return domain.NewAppError(domain.TagValidation, "salary must not be negative", nil)
	}
	return nil
}

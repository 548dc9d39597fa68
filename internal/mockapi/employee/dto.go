package employee

import "time"

// CreateEmployeeRequest represents the input for creating an employee.
type CreateEmployeeRequest struct {
	Name       string    `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email      string    `json:"email" form:"email" binding:"required,email"`
	Active     bool      `json:"active" form:"active"`
	Salary     float64   `json:"salary" form:"salary" binding:"gte=0"`
	LocationID string    `json:"location_id" form:"location_id" binding:"max=64"`
	HiredAt    time.Time `json:"hired_at" form:"hired_at"`
}

func (r CreateEmployeeRequest) input() Input {
	return Input{
		Name:       r.Name,
		Email:      r.Email,
		Active:     r.Active,
		Salary:     r.Salary,
		LocationID: r.LocationID,
		HiredAt:    r.HiredAt,
	}
}

// UpdateEmployeeRequest represents the input for updating an employee.
type UpdateEmployeeRequest struct {
	Name       string    `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email      string    `json:"email" form:"email" binding:"required,email"`
	Active     bool      `json:"active" form:"active"`
	Salary     float64   `json:"salary" form:"salary" binding:"gte=0"`
	LocationID string    `json:"location_id" form:"location_id" binding:"max=64"`
	HiredAt    time.Time `json:"hired_at" form:"hired_at"`
}

func (r UpdateEmployeeRequest) input() Input {
	return Input{
		Name:       r.Name,
		Email:      r.Email,
		Active:     r.Active,
		Salary:     r.Salary,
		LocationID: r.LocationID,
		HiredAt:    r.HiredAt,
	}
}

package employee

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/pkg"
)

// Handler handles REST API requests for the employee resource.
type Handler struct {
	svc Service
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/v1/employees.
func (h *Handler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	e, err := h.svc.Create(c.Request.Context(), req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, e)
}

// Get handles GET /api/v1/employees/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.TagValidation, err.Error(), nil))
		return
	}

	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, e)
}

// List handles GET /api/v1/employees.
func (h *Handler) List(c *gin.Context) {
	q := pkg.ParseListQuery(c)

	result, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Update handles PUT /api/v1/employees/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.TagValidation, err.Error(), nil))
		return
	}

	var req UpdateEmployeeRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	e, err := h.svc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, e)
}

// Delete handles DELETE /api/v1/employees/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.TagValidation, err.Error(), nil))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

var errInvalidID = errors.New("id must be a positive integer")

// parseID extracts and validates the :id path parameter.
func parseID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

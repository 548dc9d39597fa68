package authn

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/pkg"
)

// Handler handles REST API requests for authentication.
type Handler struct {
	svc Service
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	tokenResp, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, tokenResp)
}

// Profile handles GET /api/v1/auth/profile.
func (h *Handler) Profile(c *gin.Context) {
	operatorID, ok := OperatorID(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), operatorID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, profile)
}

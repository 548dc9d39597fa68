package authn

import "github.com/gin-gonic/gin"

// Module wires the auth endpoints into the API router.
type Module struct {
	handler *Handler
}

// NewModule creates the auth Module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("authn.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers login on the public group and profile behind the
// token middleware.
func (m *Module) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", m.handler.Login)
	protected.GET("/auth/profile", m.handler.Profile)
}

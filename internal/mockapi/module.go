package mockapi

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering API module. public
// receives routes that work without a token; protected sits behind the
// bearer-token middleware.
type Module interface {
	RegisterRoutes(public, protected *gin.RouterGroup)
}

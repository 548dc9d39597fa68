package authn

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/pkg"
)

const operatorContextKey = "operator_id"

// RequireToken returns a gin middleware that rejects requests without a valid
// bearer token. An expired token yields a 401 body tagged SESSION_EXPIRED so
// the console invalidates its session rather than retrying.
func RequireToken(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			pkg.Error(c, domain.ErrUnauthorized)
			c.Abort()
			return
		}

		operatorID, err := svc.Parse(token)
		if err != nil {
			pkg.Error(c, err)
			c.Abort()
			return
		}

		c.Set(operatorContextKey, operatorID)
		c.Next()
	}
}

// OperatorID extracts the authenticated operator's ID from the gin.Context.
func OperatorID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(operatorContextKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

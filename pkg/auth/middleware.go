package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sam33128/Gita-pyqvault/pkg/types"
)

// TokenFromRequest extracts the session token from the X-Session-Token
// header or the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if token := c.GetHeader("X-Session-Token"); token != "" {
		return token
	}
	if token, err := c.Cookie(SessionCookie); err == nil {
		return token
	}
	return ""
}

// Middleware rejects requests that do not carry a live admin session.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Valid(TokenFromRequest(c)) {
			c.JSON(http.StatusUnauthorized, types.APIResponse{
				Success: false,
				Error:   "admin session required",
				Code:    "INVALID_CREDENTIAL",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

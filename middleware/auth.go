package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"VConnct/service/gateway"
	errs "VConnct/tools/errs"
)

const CtxUserKey = "currentUser"

// Auth protects REST routes with the same session validator the socket
// handshake uses; the verified identity lands in the gin context.
func Auth(v *gateway.SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := v.Validate(c.Request.Context(), c.GetHeader("Cookie"))
		if err != nil {
			switch {
			case errors.Is(err, gateway.ErrUserNotFound):
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
			case errors.Is(err, gateway.ErrAuthFailed):
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errs.Msg(err)})
			}
			return
		}
		c.Set(CtxUserKey, ident)
		c.Next()
	}
}

// CurrentUser reads the identity set by Auth; nil when the route is not
// protected.
func CurrentUser(c *gin.Context) *gateway.Identity {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	ident, _ := v.(*gateway.Identity)
	return ident
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS allows the maintenance front end (served from another origin)
// to call the API. PATCH is needed for the stock-adjust endpoint and
// Content-Disposition is exposed for the PDF and Excel downloads.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

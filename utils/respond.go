// utils/respond.go
package utils

import "github.com/gin-gonic/gin"

// RespondWithError writes a JSON error body with the given status.
func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response. Detail, when set, carries
// machine-readable context such as a computed minimum bid.
func JSONError(c *gin.Context, status int, err error, message string, detail ...gin.H) {
	body := gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	}
	for _, d := range detail {
		for k, v := range d {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

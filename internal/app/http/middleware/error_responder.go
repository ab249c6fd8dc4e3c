package middleware

import (
	"log"

	"rental-app/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponder turns errors pushed with c.Error into the API's JSON error
// shape. It takes the last error of the request and maps it through apperr.
func ErrorResponder() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperr.From(err)

		if appErr.Err != nil {
			log.Printf("%s %s: %s: %v", c.Request.Method, c.Request.URL.Path, appErr.Code, appErr.Err)
		}

		body := gin.H{
			"success": false,
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		}
		if len(appErr.Fields) > 0 {
			body["error"].(gin.H)["fields"] = appErr.Fields
		}
		c.JSON(appErr.Status, body)
	}
}

package helpers

import (
	"net/http"

	"github.com/farellandr/influencehub/internal/apperr"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithAppError writes err using its apperr code. Untyped errors become a
// generic 500 so internal details never reach the client.
func RespondWithAppError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	RespondWithError(c, apperr.HTTPStatus(err), apperr.PublicMessage(err))
}

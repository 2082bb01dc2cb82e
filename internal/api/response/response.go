package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/apperr"
)

// Success writes the payload as-is with the given status. Success bodies
// are returned directly, no wrapper.
func Success(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Message writes a {"message": ...} body with the given status.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// Error maps the error onto its HTTP status and writes the error envelope.
// Internal faults are logged and masked; business-rule violations surface
// their own text.
func Error(c *gin.Context, err error) {
	status := apperr.Status(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "internal error",
			"path", c.FullPath(), "error", err)
		message = "Internal server error"
	}
	c.JSON(status, Envelope{
		Err:     message,
		Message: message,
		Code:    apperr.Code(err),
	})
}

// Envelope is the JSON error body: {error, message, code}.
type Envelope struct {
	Err     string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// issueCSRFToken hands out a token plus its signed cookie for forms that are
// not served by the editor endpoint (signup, delete, theme).
func (h *NotesHandler) issueCSRFToken(c *gin.Context) {
	token, cookie, err := h.csrf.Issue()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	http.SetCookie(c.Writer, cookie)
	c.JSON(http.StatusOK, gin.H{"csrfToken": token})
}

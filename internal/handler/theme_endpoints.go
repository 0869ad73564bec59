package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"notes-server/internal/forms"
	"notes-server/internal/models"
	"notes-server/internal/web/theme"
)

// setTheme persists the color scheme preference in its cookie. Values
// outside the enum are rejected rather than stored.
func (h *NotesHandler) setTheme(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
		return
	}

	if err := h.csrf.Validate(c.PostForm(forms.FieldCSRFToken), c.Request); err != nil {
		handleServiceError(c, err)
		return
	}

	raw := c.PostForm("theme")
	t, ok := models.ParseTheme(raw)
	if !ok {
		handleServiceError(c, fmt.Errorf("%w: theme %q", models.ErrInvalidInput, raw))
		return
	}

	http.SetCookie(c.Writer, theme.Write(t))
	c.JSON(http.StatusOK, gin.H{"theme": t})
}

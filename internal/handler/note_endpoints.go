package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"notes-server/internal/forms"
	"notes-server/internal/models"
)

// listNotes returns the user's notes plus any pending one-shot toast.
func (h *NotesHandler) listNotes(c *gin.Context) {
	user, notes, err := h.noteService.ListNotes(c.Request.Context(), c.Param("username"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]noteListItem, 0, len(notes))
	for _, n := range notes {
		items = append(items, noteListItem{ID: n.ID.String(), Title: n.Title})
	}

	c.JSON(http.StatusOK, noteListResponse{
		User:  profileFromUser(user),
		Notes: items,
		Toast: h.peekToast(c),
		Theme: themeFromRequest(c),
	})
}

// noteDetail returns one note with its image metadata.
func (h *NotesHandler) noteDetail(c *gin.Context) {
	noteID, err := parseNoteID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	note, images, err := h.noteService.GetNote(c.Request.Context(), c.Param("username"), noteID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, noteDetailResponse{
		Note:  noteViewFrom(note, images),
		Toast: h.peekToast(c),
		Theme: themeFromRequest(c),
	})
}

// editNoteForm returns the editor payload: current values, image metadata
// and a fresh CSRF token for the subsequent POST.
func (h *NotesHandler) editNoteForm(c *gin.Context) {
	noteID, err := parseNoteID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	note, images, err := h.noteService.GetNote(c.Request.Context(), c.Param("username"), noteID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	token, cookie, err := h.csrf.Issue()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	http.SetCookie(c.Writer, cookie)

	c.JSON(http.StatusOK, noteEditorResponse{
		Note:      noteViewFrom(note, images),
		CSRFToken: token,
		Theme:     themeFromRequest(c),
	})
}

// updateNote is the note editor submission pipeline: parse the multipart
// body, check CSRF, validate, then apply the reconciled update in one
// transaction. Validation failures come back as data with the error map so
// the form re-renders inline; only CSRF and transport failures abort
// without one.
func (h *NotesHandler) updateNote(c *gin.Context) {
	noteID, err := parseNoteID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Resolve the note before running any validation so a dead link is a
	// plain 404, not a validation response.
	username := c.Param("username")
	if _, _, err := h.noteService.GetNote(c.Request.Context(), username, noteID); err != nil {
		handleServiceError(c, err)
		return
	}

	result, ok := h.runSubmissionPipeline(c)
	if !ok {
		return
	}

	if err := h.noteService.UpdateNote(c.Request.Context(), username, noteID, *result.Value); err != nil {
		handleServiceError(c, err)
		return
	}

	notesSavedTotal.WithLabelValues("update").Inc()
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/users/%s/notes/%s", username, noteID))
}

// createNote runs the same pipeline for a brand new note.
func (h *NotesHandler) createNote(c *gin.Context) {
	username := c.Param("username")

	result, ok := h.runSubmissionPipeline(c)
	if !ok {
		return
	}

	noteID, err := h.noteService.CreateNote(c.Request.Context(), username, *result.Value)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	notesSavedTotal.WithLabelValues("create").Inc()
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/users/%s/notes/%s", username, noteID))
}

// noteAction handles the non-editor POST on the note detail path. The only
// supported intent is delete, which sets the post-redirect toast.
func (h *NotesHandler) noteAction(c *gin.Context) {
	noteID, err := parseNoteID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
		return
	}
	if err := h.csrf.Validate(c.PostForm(forms.FieldCSRFToken), c.Request); err != nil {
		handleServiceError(c, err)
		return
	}

	username := c.Param("username")
	intent := c.PostForm(forms.FieldIntent)
	switch intent {
	case "delete":
		if err := h.noteService.DeleteNote(c.Request.Context(), username, noteID); err != nil {
			handleServiceError(c, err)
			return
		}
	default:
		handleServiceError(c, fmt.Errorf("%w: %s", models.ErrInvalidIntent, intent))
		return
	}

	cookie, err := h.toasts.Set(c.Request.Context(), c.Request, models.Toast{
		Type:        models.ToastSuccess,
		Title:       "Note deleted",
		Description: "Your note has been deleted",
	})
	if err != nil {
		// The delete itself succeeded; losing the toast is not worth a 500.
		h.logger.Warn("Failed to set toast after note deletion", zap.Error(err))
	} else {
		http.SetCookie(c.Writer, cookie)
	}

	notesSavedTotal.WithLabelValues("delete").Inc()
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/users/%s/notes", username))
}

// runSubmissionPipeline performs steps shared by create and update: body
// parsing with the transport-level part limit, CSRF validation and schema
// validation. It writes the response itself on failure and reports ok=false.
func (h *NotesHandler) runSubmissionPipeline(c *gin.Context) (forms.SubmissionResult[forms.NoteDraft], bool) {
	form, err := h.parseMultipartBody(c)
	if err != nil {
		handleServiceError(c, err)
		return forms.SubmissionResult[forms.NoteDraft]{}, false
	}

	// CSRF comes before validation: an unauthenticated forgery must not
	// learn anything about the payload, and must never reach persistence.
	if err := h.csrf.Validate(firstValue(form.Value[forms.FieldCSRFToken]), c.Request); err != nil {
		handleServiceError(c, err)
		return forms.SubmissionResult[forms.NoteDraft]{}, false
	}

	values, drafts, err := forms.ParseNoteForm(form)
	if err != nil {
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
		return forms.SubmissionResult[forms.NoteDraft]{}, false
	}

	result := forms.ValidateNoteEditor(values, drafts)
	if result.Status == forms.StatusError {
		validationFailuresTotal.Inc()
		// Same status the browser posted with, so the client re-renders
		// inline errors without navigating.
		c.JSON(http.StatusBadRequest, result)
		return forms.SubmissionResult[forms.NoteDraft]{}, false
	}

	return result, true
}

// parseMultipartBody parses the request body, enforcing the whole-body
// bound and the per-part transport limit before validation runs.
func (h *NotesHandler) parseMultipartBody(c *gin.Context) (*multipart.Form, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)

	if err := c.Request.ParseMultipartForm(h.maxPartSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, models.ErrUploadTooLarge
		}
		return nil, fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}

	form := c.Request.MultipartForm
	for _, headers := range form.File {
		for _, fh := range headers {
			if fh.Size > h.maxPartSize {
				return nil, models.ErrUploadTooLarge
			}
		}
	}
	return form, nil
}

func (h *NotesHandler) peekToast(c *gin.Context) *models.Toast {
	t, err := h.toasts.Peek(c.Request.Context(), c.Request)
	if err != nil {
		h.logger.Warn("Failed to peek toast", zap.Error(err))
		return nil
	}
	if t != nil {
		toastsDeliveredTotal.Inc()
	}
	return t
}

func parseNoteID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("noteId")
	id, err := uuid.Parse(raw)
	if err != nil {
		// An unparseable id cannot resolve to a record: not found, per the
		// pipeline's short-circuit rule.
		return uuid.Nil, fmt.Errorf("%w: note id %q", models.ErrNoteNotFound, raw)
	}
	return id, nil
}

func firstValue(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-server/internal/models"
	"notes-server/internal/service"
	"notes-server/internal/web/csrf"
)

// ToastStore is the slice of the toast store the handler needs; satisfied by
// *toast.Store.
type ToastStore interface {
	Set(ctx context.Context, r *http.Request, t models.Toast) (*http.Cookie, error)
	Peek(ctx context.Context, r *http.Request) (*models.Toast, error)
}

// NotesHandler wires the HTTP surface to the services and the cookie-backed
// collaborators.
type NotesHandler struct {
	noteService service.NoteService
	userService service.UserService
	csrf        *csrf.Service
	toasts      ToastStore
	maxPartSize int64
	maxBodySize int64
	logger      *zap.Logger
}

// NewNotesHandler creates the handler.
func NewNotesHandler(
	noteService service.NoteService,
	userService service.UserService,
	csrfService *csrf.Service,
	toasts ToastStore,
	maxPartSize int64,
	maxBodySize int64,
	logger *zap.Logger,
) *NotesHandler {
	return &NotesHandler{
		noteService: noteService,
		userService: userService,
		csrf:        csrfService,
		toasts:      toasts,
		maxPartSize: maxPartSize,
		maxBodySize: maxBodySize,
		logger:      logger.Named("NotesHandler"),
	}
}

// RegisterRoutes registers the application routes.
func (h *NotesHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/csrf", h.issueCSRFToken)
	router.POST("/signup", h.signup)
	router.POST("/theme", h.setTheme)

	usersGroup := router.Group("/users")
	{
		usersGroup.GET("", h.searchUsers)
		usersGroup.GET("/:username", h.userProfile)
		usersGroup.GET("/:username/notes", h.listNotes)
		usersGroup.POST("/:username/notes", h.createNote)
		usersGroup.GET("/:username/notes/:noteId", h.noteDetail)
		usersGroup.POST("/:username/notes/:noteId", h.noteAction)
		usersGroup.GET("/:username/notes/:noteId/edit", h.editNoteForm)
		usersGroup.POST("/:username/notes/:noteId/edit", h.updateNote)
	}

	resourcesGroup := router.Group("/resources")
	{
		resourcesGroup.GET("/note-images/:imageId", h.noteImage)
		resourcesGroup.GET("/user-images/:imageId", h.userImage)
	}
}

package handler

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"notes-server/internal/forms"
	"notes-server/internal/models"
)

// Signup validation constants.
const (
	minUsernameLength = 3
	maxUsernameLength = 30
	minPasswordLength = 8
	maxPasswordLength = 100

	// honeypotField is a hidden input real users never fill in. A non-empty
	// value marks the submission as automated.
	honeypotField = "name__confirm"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// signup registers a new account from a regular form post. The CSRF check
// and the honeypot run before anything touches persistence.
func (h *NotesHandler) signup(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
		return
	}

	if err := h.csrf.Validate(c.PostForm(forms.FieldCSRFToken), c.Request); err != nil {
		handleServiceError(c, err)
		return
	}

	if c.PostForm(honeypotField) != "" {
		handleServiceError(c, models.ErrSpamSubmission)
		return
	}

	username := c.PostForm("username")
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")

	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: fmt.Sprintf("Username length must be between %d and %d characters", minUsernameLength, maxUsernameLength)}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if !usernameRegex.MatchString(username) {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Username can only contain letters, numbers, underscores, and hyphens"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if !emailRegex.MatchString(email) {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "A valid email address is required"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: fmt.Sprintf("Password length must be between %d and %d characters", minPasswordLength, maxPasswordLength)}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), username, name, email, password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()

	c.JSON(http.StatusCreated, signupResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
}

// searchUsers lists users matching the search term, everyone when empty.
func (h *NotesHandler) searchUsers(c *gin.Context) {
	term := c.Query("search")

	results, err := h.userService.Search(c.Request.Context(), term)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]userSearchItem, 0, len(results))
	for _, r := range results {
		item := userSearchItem{ID: r.ID.String(), Username: r.Username, Name: r.Name}
		if r.ImageID != nil {
			id := r.ImageID.String()
			item.ImageID = &id
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, userSearchResponse{Status: "idle", Users: items})
}

func (h *NotesHandler) userProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		User:  profileFromUser(user),
		Toast: h.peekToast(c),
		Theme: themeFromRequest(c),
	})
}

// noteImage serves an attachment blob with its stored content type.
func (h *NotesHandler) noteImage(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		handleServiceError(c, fmt.Errorf("%w: image id %q", models.ErrImageNotFound, c.Param("imageId")))
		return
	}

	image, err := h.noteService.GetNoteImage(c.Request.Context(), imageID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, image.ContentType, image.Blob)
}

// userImage serves an avatar blob.
func (h *NotesHandler) userImage(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		handleServiceError(c, fmt.Errorf("%w: image id %q", models.ErrImageNotFound, c.Param("imageId")))
		return
	}

	image, err := h.userService.GetUserImage(c.Request.Context(), imageID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, image.ContentType, image.Blob)
}

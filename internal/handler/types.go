package handler

import (
	"github.com/gin-gonic/gin"

	"notes-server/internal/models"
	"notes-server/internal/web/theme"
)

type imageView struct {
	ID      string  `json:"id"`
	AltText *string `json:"altText"`
}

type noteView struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Images  []imageView `json:"images"`
}

type noteListItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type profileView struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Name     *string `json:"name"`
}

type noteListResponse struct {
	User  profileView    `json:"user"`
	Notes []noteListItem `json:"notes"`
	Toast *models.Toast  `json:"toast,omitempty"`
	Theme models.Theme   `json:"theme"`
}

type noteDetailResponse struct {
	Note  noteView      `json:"note"`
	Toast *models.Toast `json:"toast,omitempty"`
	Theme models.Theme  `json:"theme"`
}

type noteEditorResponse struct {
	Note      noteView     `json:"note"`
	CSRFToken string       `json:"csrfToken"`
	Theme     models.Theme `json:"theme"`
}

type userSearchResponse struct {
	Status string           `json:"status"`
	Users  []userSearchItem `json:"users"`
}

type userSearchItem struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Name     *string `json:"name"`
	ImageID  *string `json:"imageId"`
}

type profileResponse struct {
	User  profileView   `json:"user"`
	Toast *models.Toast `json:"toast,omitempty"`
	Theme models.Theme  `json:"theme"`
}

type signupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func noteViewFrom(note *models.Note, images []models.NoteImageMeta) noteView {
	views := make([]imageView, 0, len(images))
	for _, img := range images {
		views = append(views, imageView{ID: img.ID.String(), AltText: img.AltText})
	}
	return noteView{
		ID:      note.ID.String(),
		Title:   note.Title,
		Content: note.Content,
		Images:  views,
	}
}

func profileFromUser(u *models.User) profileView {
	return profileView{ID: u.ID.String(), Username: u.Username, Name: u.Name}
}

// themeFromRequest resolves the rendered theme: the cookie is the source of
// truth, light is the server-side default when it is absent or unreadable.
func themeFromRequest(c *gin.Context) models.Theme {
	if t, ok := theme.Read(c.Request); ok {
		return t
	}
	return models.ThemeLight
}

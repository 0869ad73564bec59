package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notes-server/internal/forms"
	"notes-server/internal/models"
	"notes-server/internal/web/csrf"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-session-secret"

// --- service mocks --- //

type mockNoteService struct {
	user   *models.User
	note   *models.Note
	images []models.NoteImageMeta
	getErr error

	updateCalled bool
	updatedDraft forms.NoteDraft

	createCalled bool
	createID     uuid.UUID
	createdDraft forms.NoteDraft

	deleteCalled bool

	image    *models.NoteImage
	imageErr error
}

func (m *mockNoteService) ListNotes(_ context.Context, username string) (*models.User, []models.Note, error) {
	if m.user == nil || m.user.Username != username {
		return nil, nil, models.ErrUserNotFound
	}
	var notes []models.Note
	if m.note != nil {
		notes = append(notes, *m.note)
	}
	return m.user, notes, nil
}

func (m *mockNoteService) GetNote(_ context.Context, username string, noteID uuid.UUID) (*models.Note, []models.NoteImageMeta, error) {
	if m.getErr != nil {
		return nil, nil, m.getErr
	}
	if m.note == nil || m.note.ID != noteID {
		return nil, nil, models.ErrNoteNotFound
	}
	return m.note, m.images, nil
}

func (m *mockNoteService) CreateNote(_ context.Context, _ string, draft forms.NoteDraft) (uuid.UUID, error) {
	m.createCalled = true
	m.createdDraft = draft
	return m.createID, nil
}

func (m *mockNoteService) UpdateNote(_ context.Context, _ string, _ uuid.UUID, draft forms.NoteDraft) error {
	m.updateCalled = true
	m.updatedDraft = draft
	return nil
}

func (m *mockNoteService) DeleteNote(_ context.Context, _ string, _ uuid.UUID) error {
	m.deleteCalled = true
	return nil
}

func (m *mockNoteService) GetNoteImage(_ context.Context, _ uuid.UUID) (*models.NoteImage, error) {
	if m.imageErr != nil {
		return nil, m.imageErr
	}
	if m.image == nil {
		return nil, models.ErrImageNotFound
	}
	return m.image, nil
}

type mockUserService struct {
	registered  *models.User
	registerErr error
	profile     *models.User
	results     []models.UserSearchResult
}

func (m *mockUserService) Register(_ context.Context, username, name, email, _ string) (*models.User, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	user := &models.User{ID: uuid.New(), Username: username, Email: email}
	if name != "" {
		user.Name = &name
	}
	m.registered = user
	return user, nil
}

func (m *mockUserService) GetProfile(_ context.Context, username string) (*models.User, error) {
	if m.profile == nil || m.profile.Username != username {
		return nil, models.ErrUserNotFound
	}
	return m.profile, nil
}

func (m *mockUserService) Search(_ context.Context, _ string) ([]models.UserSearchResult, error) {
	return m.results, nil
}

func (m *mockUserService) GetUserImage(_ context.Context, _ uuid.UUID) (*models.UserImage, error) {
	return nil, models.ErrImageNotFound
}

type fakeToastStore struct {
	set     *models.Toast
	pending *models.Toast
}

func (f *fakeToastStore) Set(_ context.Context, _ *http.Request, t models.Toast) (*http.Cookie, error) {
	f.set = &t
	return &http.Cookie{Name: "notes_session", Value: "fake", Path: "/"}, nil
}

func (f *fakeToastStore) Peek(_ context.Context, _ *http.Request) (*models.Toast, error) {
	t := f.pending
	f.pending = nil
	return t, nil
}

// --- fixture --- //

type handlerFixture struct {
	router *gin.Engine
	notes  *mockNoteService
	users  *mockUserService
	toasts *fakeToastStore
	csrf   *csrf.Service
	owner  *models.User
	note   *models.Note
}

func newHandlerFixture(t *testing.T, maxPartSize int64) *handlerFixture {
	t.Helper()

	owner := &models.User{ID: uuid.New(), Username: "kody"}
	note := &models.Note{ID: uuid.New(), OwnerID: owner.ID, Title: "Basic Koala Facts", Content: "Koalas are mammals."}

	notes := &mockNoteService{user: owner, note: note, createID: uuid.New()}
	users := &mockUserService{profile: owner}
	toasts := &fakeToastStore{}

	csrfService, err := csrf.NewService(testSecret, false, nil)
	require.NoError(t, err)

	h := NewNotesHandler(notes, users, csrfService, toasts, maxPartSize, 32<<20, zap.NewNop())

	router := gin.New()
	h.RegisterRoutes(router)

	return &handlerFixture{
		router: router,
		notes:  notes,
		users:  users,
		toasts: toasts,
		csrf:   csrfService,
		owner:  owner,
		note:   note,
	}
}

// issueCSRF returns a token and the matching cookie for requests that must
// pass validation.
func (f *handlerFixture) issueCSRF(t *testing.T) (string, *http.Cookie) {
	t.Helper()
	token, cookie, err := f.csrf.Issue()
	require.NoError(t, err)
	return token, cookie
}

type editorField struct{ name, value string }

type editorFile struct {
	altText  string
	filename string
	data     []byte
}

func editorRequest(t *testing.T, target string, fields []editorField, files []editorFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		require.NoError(t, w.WriteField(f.name, f.value))
	}
	for _, img := range files {
		require.NoError(t, w.WriteField(forms.FieldImageID, ""))
		require.NoError(t, w.WriteField(forms.FieldImageAltText, img.altText))
		part, err := w.CreateFormFile(forms.FieldImageFile, img.filename)
		require.NoError(t, err)
		_, err = part.Write(img.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, target, &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func formRequest(target string, values url.Values, cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func (f *handlerFixture) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// --- read endpoints --- //

func TestListNotes(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/users/kody/notes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User  profileView    `json:"user"`
		Notes []noteListItem `json:"notes"`
		Theme models.Theme   `json:"theme"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "kody", resp.User.Username)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "Basic Koala Facts", resp.Notes[0].Title)
	// Light is the server-side default when no theme cookie is set.
	assert.Equal(t, models.ThemeLight, resp.Theme)
}

func TestListNotes_ThemeCookieWins(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)

	r := httptest.NewRequest(http.MethodGet, "/users/kody/notes", nil)
	r.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	rec := f.do(r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"theme":"dark"`)
}

func TestListNotes_DeliversPendingToastOnce(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	f.toasts.pending = &models.Toast{Type: models.ToastSuccess, Title: "Note deleted", Description: "Your note has been deleted"}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/users/kody/notes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Note deleted"`)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/users/kody/notes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"Note deleted"`)
}

func TestNoteDetail_UnparseableIDIsNotFound(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/users/kody/notes/not-a-uuid", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, models.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestEditNoteForm_IssuesCSRFToken(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)

	rec := f.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/users/kody/notes/%s/edit", f.note.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CSRFToken)

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrf.CookieName {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "csrf cookie must be set")
}

// --- editor submissions --- //

func (f *handlerFixture) editTarget() string {
	return fmt.Sprintf("/users/kody/notes/%s/edit", f.note.ID)
}

func TestUpdateNote_MissingCSRFToken(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)

	r := editorRequest(t, f.editTarget(), []editorField{
		{forms.FieldTitle, "Valid title"},
		{forms.FieldContent, "Valid content"},
	}, nil)
	rec := f.do(r)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, models.ErrCodeCSRF, decodeError(t, rec).Code)
	assert.False(t, f.notes.updateCalled, "a forged submission must never reach persistence")
}

func TestUpdateNote_TamperedCSRFCookie(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, _ := f.issueCSRF(t)

	r := editorRequest(t, f.editTarget(), []editorField{
		{forms.FieldCSRFToken, token},
		{forms.FieldTitle, "Valid title"},
		{forms.FieldContent, "Valid content"},
	}, nil)
	r.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token + ".bogus-signature"})
	rec := f.do(r)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, f.notes.updateCalled)
}

func TestUpdateNote_ValidationFailureRendersErrorMap(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := editorRequest(t, f.editTarget(), []editorField{
		{forms.FieldCSRFToken, token},
		{forms.FieldTitle, "ab"},
		{forms.FieldContent, ""},
	}, nil)
	r.AddCookie(cookie)
	rec := f.do(r)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Status string                  `json:"status"`
		Errors *forms.SubmissionErrors `json:"errors"`
		Raw    map[string]string       `json:"raw"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Errors)
	assert.Equal(t, []string{"Title must be at least 5 characters"}, resp.Errors.FieldErrors[forms.FieldTitle])
	assert.Equal(t, []string{"A note should have some content"}, resp.Errors.FieldErrors[forms.FieldContent])
	assert.Equal(t, "ab", resp.Raw[forms.FieldTitle])

	assert.False(t, f.notes.updateCalled)
}

func TestUpdateNote_Success(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := editorRequest(t, f.editTarget(), []editorField{
		{forms.FieldCSRFToken, token},
		{forms.FieldTitle, "  Edited title  "},
		{forms.FieldContent, "Edited content"},
	}, nil)
	r.AddCookie(cookie)
	rec := f.do(r)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, fmt.Sprintf("/users/kody/notes/%s", f.note.ID), rec.Header().Get("Location"))

	require.True(t, f.notes.updateCalled)
	assert.Equal(t, "Edited title", f.notes.updatedDraft.Title)
	assert.Equal(t, "Edited content", f.notes.updatedDraft.Content)
}

func TestUpdateNote_MissingNoteShortCircuitsValidation(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	f.notes.getErr = models.ErrNoteNotFound

	// Payload is invalid too, but a dead link must answer 404, not a
	// validation response.
	r := editorRequest(t, f.editTarget(), []editorField{
		{forms.FieldTitle, "ab"},
	}, nil)
	rec := f.do(r)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, models.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestCreateNote_Success(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := editorRequest(t, "/users/kody/notes", []editorField{
		{forms.FieldCSRFToken, token},
		{forms.FieldTitle, "Brand new note"},
		{forms.FieldContent, "With some content"},
	}, nil)
	r.AddCookie(cookie)
	rec := f.do(r)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, fmt.Sprintf("/users/kody/notes/%s", f.notes.createID), rec.Header().Get("Location"))
	assert.True(t, f.notes.createCalled)
}

func TestUpdateNote_PartOverTransportLimit(t *testing.T) {
	// Transport limit set below the validation bound so the oversized part
	// trips the 413 path instead of a field error.
	f := newHandlerFixture(t, 1024)
	token, cookie := f.issueCSRF(t)

	r := editorRequest(t, f.editTarget(), []editorField{
		{forms.FieldCSRFToken, token},
		{forms.FieldTitle, "Valid title"},
		{forms.FieldContent, "Valid content"},
	}, []editorFile{
		{altText: "big", filename: "big.png", data: bytes.Repeat([]byte("x"), 4096)},
	})
	r.AddCookie(cookie)
	rec := f.do(r)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, models.ErrCodePayloadLimit, decodeError(t, rec).Code)
	assert.False(t, f.notes.updateCalled)
}

// --- note actions --- //

func TestNoteAction_DeleteSetsToastAndRedirects(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := formRequest(fmt.Sprintf("/users/kody/notes/%s", f.note.ID), url.Values{
		forms.FieldCSRFToken: {token},
		forms.FieldIntent:    {"delete"},
	}, cookie)
	rec := f.do(r)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/kody/notes", rec.Header().Get("Location"))
	assert.True(t, f.notes.deleteCalled)

	require.NotNil(t, f.toasts.set)
	assert.Equal(t, models.ToastSuccess, f.toasts.set.Type)
	assert.Equal(t, "Note deleted", f.toasts.set.Title)
	assert.Equal(t, "Your note has been deleted", f.toasts.set.Description)
}

func TestNoteAction_UnknownIntent(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := formRequest(fmt.Sprintf("/users/kody/notes/%s", f.note.ID), url.Values{
		forms.FieldCSRFToken: {token},
		forms.FieldIntent:    {"archive"},
	}, cookie)
	rec := f.do(r)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, f.notes.deleteCalled)
}

func TestNoteAction_CSRFCheckedBeforeIntent(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)

	r := formRequest(fmt.Sprintf("/users/kody/notes/%s", f.note.ID), url.Values{
		forms.FieldIntent: {"delete"},
	})
	rec := f.do(r)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, f.notes.deleteCalled)
}

// --- signup --- //

func TestSignup_Success(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := formRequest("/signup", url.Values{
		forms.FieldCSRFToken: {token},
		"username":           {"kody"},
		"name":               {"Kody Koala"},
		"email":              {"kody@example.com"},
		"password":           {"correct horse battery"},
	}, cookie)
	rec := f.do(r)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, f.users.registered)
	assert.Equal(t, "kody", f.users.registered.Username)
}

func TestSignup_HoneypotRejectsSilently(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := formRequest("/signup", url.Values{
		forms.FieldCSRFToken: {token},
		"username":           {"kody"},
		"email":              {"kody@example.com"},
		"password":           {"correct horse battery"},
		"name__confirm":      {"filled by a bot"},
	}, cookie)
	rec := f.do(r)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, models.ErrCodeSpam, resp.Code)
	assert.Equal(t, "Form not submitted properly", resp.Message)
	assert.Nil(t, f.users.registered)
}

func TestSignup_ConflictMapsTo409(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	f.users.registerErr = models.ErrEmailAlreadyExists
	token, cookie := f.issueCSRF(t)

	r := formRequest("/signup", url.Values{
		forms.FieldCSRFToken: {token},
		"username":           {"kody"},
		"email":              {"kody@example.com"},
		"password":           {"correct horse battery"},
	}, cookie)
	rec := f.do(r)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignup_ShortPassword(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := formRequest("/signup", url.Values{
		forms.FieldCSRFToken: {token},
		"username":           {"kody"},
		"email":              {"kody@example.com"},
		"password":           {"short"},
	}, cookie)
	rec := f.do(r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, f.users.registered)
}

// --- theme and csrf endpoints --- //

func TestSetTheme(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := formRequest("/theme", url.Values{
		forms.FieldCSRFToken: {token},
		"theme":              {"dark"},
	}, cookie)
	rec := f.do(r)

	require.Equal(t, http.StatusOK, rec.Code)

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "theme" {
			found = true
			assert.Equal(t, "dark", c.Value)
		}
	}
	assert.True(t, found, "theme cookie must be set")
}

func TestSetTheme_RejectsUnknownValue(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	token, cookie := f.issueCSRF(t)

	r := formRequest("/theme", url.Values{
		forms.FieldCSRFToken: {token},
		"theme":              {"solarized"},
	}, cookie)
	rec := f.do(r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestIssueCSRFEndpoint(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.CSRFToken)

	// The issued pair passes validation on a subsequent post.
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	r := formRequest("/theme", url.Values{
		forms.FieldCSRFToken: {resp.CSRFToken},
		"theme":              {"light"},
	}, cookies[0])
	rec = f.do(r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- resources and search --- //

func TestNoteImage(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	f.notes.image = &models.NoteImage{
		ID:          uuid.New(),
		NoteID:      f.note.ID,
		ContentType: "image/png",
		Blob:        []byte("png-bytes"),
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/resources/note-images/"+f.notes.image.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
}

func TestNoteImage_BadID(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/resources/note-images/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchUsers(t *testing.T) {
	f := newHandlerFixture(t, 8<<20)
	name := "Kody Koala"
	f.users.results = []models.UserSearchResult{
		{ID: uuid.New(), Username: "kody", Name: &name},
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/users?search=kody", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp userSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "idle", resp.Status)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "kody", resp.Users[0].Username)
}

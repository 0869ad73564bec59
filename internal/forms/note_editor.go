package forms

import (
	"fmt"
	"io"
	"mime/multipart"
)

// Note editor constraints. Both length bounds are inclusive.
const (
	TitleMinLength   = 5
	TitleMaxLength   = 100
	ContentMinLength = 5
	ContentMaxLength = 10000

	// MaxUploadSize bounds a single image part, 3 MiB.
	MaxUploadSize = 3 * 1024 * 1024
)

// AcceptedImageTypes are the MIME types the editor accepts for attachments.
var AcceptedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
}

// Multipart field names used by the editor form.
const (
	FieldTitle        = "title"
	FieldContent      = "content"
	FieldImageID      = "images[].id"
	FieldImageFile    = "images[].file"
	FieldImageAltText = "images[].altText"
	FieldCSRFToken    = "csrf"
	FieldIntent       = "intent"
)

// ImageDraft is one image fieldset as submitted: an existing image id when
// editing, an uploaded file when the blob changed, and the alt text.
type ImageDraft struct {
	ID      string // empty when this is a new image
	File    *FilePart
	AltText *string
}

// HasFile reports whether the draft carries an actual upload. Browsers post
// an empty part for untouched file inputs; those do not count.
func (d ImageDraft) HasFile() bool {
	return d.File != nil && (d.File.Size > 0 || d.File.Filename != "")
}

// NoteDraft is the validated note editor payload.
type NoteDraft struct {
	Title   string
	Content string
	Images  []ImageDraft
}

// noteEditorSchema covers the scalar fields; image fieldsets are validated
// per index below because their field names carry the position.
var noteEditorSchema = Schema{
	Fields: []FieldRule{
		{
			Name:        FieldTitle,
			Label:       "Title",
			Required:    true,
			RequiredMsg: "A note must have a title",
			MinLength:   TitleMinLength,
			MaxLength:   TitleMaxLength,
			Trim:        true,
		},
		{
			Name:        FieldContent,
			Label:       "Content",
			Required:    true,
			RequiredMsg: "A note should have some content",
			MinLength:   ContentMinLength,
			MaxLength:   ContentMaxLength,
			Trim:        true,
		},
	},
}

func imageFileRule(index int) FileRule {
	return FileRule{
		Name:         fmt.Sprintf("images[%d].file", index),
		MaxSize:      MaxUploadSize,
		ContentTypes: AcceptedImageTypes,
		SizeMsg:      fmt.Sprintf("Max file size is %d KB.", MaxUploadSize),
		TypeMsg:      ".jpg, .jpeg, .png and .webp files are accepted.",
	}
}

// ParseNoteForm extracts the raw editor values from a parsed multipart form.
// Image fieldsets are positional: the i-th id/file/altText parts belong
// together. File bytes are read here so validation and the later reconcile
// see the same data.
func ParseNoteForm(form *multipart.Form) (Values, []ImageDraft, error) {
	values := Values{
		Fields: make(map[string]*string),
		Files:  make(map[string]FilePart),
	}
	for _, name := range []string{FieldTitle, FieldContent} {
		if vs, ok := form.Value[name]; ok && len(vs) > 0 {
			v := vs[0]
			values.Fields[name] = &v
		}
	}

	ids := form.Value[FieldImageID]
	alts := form.Value[FieldImageAltText]
	files := form.File[FieldImageFile]

	count := len(ids)
	if len(alts) > count {
		count = len(alts)
	}
	if len(files) > count {
		count = len(files)
	}

	drafts := make([]ImageDraft, 0, count)
	for i := 0; i < count; i++ {
		var draft ImageDraft
		if i < len(ids) {
			draft.ID = ids[i]
		}
		if i < len(alts) && alts[i] != "" {
			alt := alts[i]
			draft.AltText = &alt
		}
		if i < len(files) {
			part, err := readFilePart(files[i])
			if err != nil {
				return Values{}, nil, fmt.Errorf("failed to read image part %d: %w", i, err)
			}
			if part.Size > 0 || part.Filename != "" {
				draft.File = &part
			}
		}
		drafts = append(drafts, draft)
	}

	return values, drafts, nil
}

func readFilePart(fh *multipart.FileHeader) (FilePart, error) {
	part := FilePart{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if fh.Size == 0 {
		return part, nil
	}
	f, err := fh.Open()
	if err != nil {
		return FilePart{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return FilePart{}, err
	}
	part.Data = data
	part.Size = int64(len(data))
	return part, nil
}

// ValidateNoteEditor runs the full editor schema over one submission and
// produces the tagged result. All failures are collected; nothing
// short-circuits.
func ValidateNoteEditor(values Values, drafts []ImageDraft) SubmissionResult[NoteDraft] {
	errs := NewErrorMap()

	validated, fieldErrs := noteEditorSchema.Validate(values)
	if fieldErrs != nil {
		for _, name := range fieldErrs.Fields() {
			for _, msg := range fieldErrs.Field(name) {
				errs.AddField(name, msg)
			}
		}
		for _, msg := range fieldErrs.FormErrors() {
			errs.AddForm(msg)
		}
	}

	for i, draft := range drafts {
		if !draft.HasFile() {
			continue
		}
		ValidateFilePart(imageFileRule(i), *draft.File, errs)
	}

	if errs.HasErrors() {
		return Failure[NoteDraft](errs, rawEcho(values))
	}

	return Success(NoteDraft{
		Title:   validated[FieldTitle],
		Content: validated[FieldContent],
		Images:  drafts,
	})
}

func rawEcho(values Values) map[string]string {
	raw := make(map[string]string, len(values.Fields))
	for name, v := range values.Fields {
		if v != nil {
			raw[name] = *v
		}
	}
	return raw
}

package forms

import (
	"fmt"
	"strings"
)

// Schema is a declarative set of field constraints evaluated against one
// submission. Validation collects every failure before returning; it never
// stops at the first invalid field.
type Schema struct {
	Fields []FieldRule
	Files  []FileRule
}

// FieldRule constrains a single string field.
type FieldRule struct {
	Name        string
	Label       string
	Required    bool
	RequiredMsg string // message when the field is absent; defaults to "A note must have a <name>"
	MinLength   int
	MaxLength   int
	Trim        bool
}

// FileRule constrains an uploaded file part. Size bounds are inclusive.
type FileRule struct {
	Name         string
	MaxSize      int64
	ContentTypes []string
	SizeMsg      string
	TypeMsg      string
}

// FilePart is one uploaded file as seen by the validator: the declared
// content type and the byte size, plus the raw bytes for the caller.
type FilePart struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Values carries the raw submitted values for one schema evaluation.
type Values struct {
	Fields map[string]*string  // nil entry = field absent from the body
	Files  map[string]FilePart // keyed by field name, only present parts
}

// Validate evaluates the schema against the submitted values. It is a pure
// function: the outcome depends only on its inputs.
func (s Schema) Validate(v Values) (map[string]string, *ErrorMap) {
	errs := NewErrorMap()
	out := make(map[string]string, len(s.Fields))

	for _, rule := range s.Fields {
		raw, present := fieldValue(v, rule.Name)
		if !present {
			if rule.Required {
				errs.AddField(rule.Name, rule.requiredMessage())
			}
			continue
		}
		val := raw
		if rule.Trim {
			val = strings.TrimSpace(val)
		}
		if rule.Required && val == "" {
			errs.AddField(rule.Name, rule.requiredMessage())
			continue
		}
		if rule.MinLength > 0 && len([]rune(val)) < rule.MinLength {
			errs.AddField(rule.Name, fmt.Sprintf("%s must be at least %d characters", rule.Label, rule.MinLength))
		}
		if rule.MaxLength > 0 && len([]rune(val)) > rule.MaxLength {
			errs.AddField(rule.Name, fmt.Sprintf("%s can not be more than %d characters", rule.Label, rule.MaxLength))
		}
		out[rule.Name] = val
	}

	for _, rule := range s.Files {
		part, present := v.Files[rule.Name]
		if !present {
			continue
		}
		ValidateFilePart(rule, part, errs)
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return out, nil
}

// ValidateFilePart applies a FileRule to one uploaded part, appending any
// failures to errs. Exposed separately because repeated image fieldsets run
// the same rule per index.
func ValidateFilePart(rule FileRule, part FilePart, errs *ErrorMap) {
	if rule.MaxSize > 0 && (part.Size <= 0 || part.Size > rule.MaxSize) {
		errs.AddField(rule.Name, rule.sizeMessage())
	}
	if len(rule.ContentTypes) > 0 && !containsType(rule.ContentTypes, part.ContentType) {
		errs.AddField(rule.Name, rule.typeMessage())
	}
}

func (r FieldRule) requiredMessage() string {
	if r.RequiredMsg != "" {
		return r.RequiredMsg
	}
	return fmt.Sprintf("A note must have a %s", r.Name)
}

func (r FileRule) sizeMessage() string {
	if r.SizeMsg != "" {
		return r.SizeMsg
	}
	return fmt.Sprintf("Max file size is %d KB.", r.MaxSize)
}

func (r FileRule) typeMessage() string {
	if r.TypeMsg != "" {
		return r.TypeMsg
	}
	return "unsupported file type"
}

func fieldValue(v Values, name string) (string, bool) {
	if v.Fields == nil {
		return "", false
	}
	raw, ok := v.Fields[name]
	if !ok || raw == nil {
		return "", false
	}
	return *raw, true
}

func containsType(types []string, ct string) bool {
	for _, t := range types {
		if strings.EqualFold(t, ct) {
			return true
		}
	}
	return false
}

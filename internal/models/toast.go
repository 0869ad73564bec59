package models

// ToastType distinguishes the toast rendering variants.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastMessage ToastType = "message"
)

// Toast is a one-shot, post-redirect notification. It is set by one request
// and delivered exactly once by a subsequent one.
type Toast struct {
	ID          string    `json:"id"`
	Type        ToastType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// Package theme persists the user's color scheme preference in a plain
// cookie. The stored value is the source of truth; clients may apply a
// media-query result as a best-effort default before the first response, but
// the server never reads anything except this cookie.
package theme

import (
	"net/http"

	"notes-server/internal/models"
)

// CookieName is the theme preference cookie.
const CookieName = "theme"

// Read returns the theme from the request cookies. Unrecognized or missing
// values read as absent.
func Read(r *http.Request) (models.Theme, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	return models.ParseTheme(cookie.Value)
}

// Write returns the cookie persisting the given theme.
func Write(t models.Theme) *http.Cookie {
	return &http.Cookie{
		Name:  CookieName,
		Value: string(t),
		Path:  "/",
	}
}

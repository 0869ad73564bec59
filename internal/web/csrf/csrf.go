package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"notes-server/internal/models"
)

// CookieName is the cookie carrying the signed token.
const CookieName = "csrf"

const tokenBytes = 32

// Service issues and validates anti-forgery tokens. The cookie stores
// "<token>.<signature>" where the signature is an HMAC-SHA256 over the token
// with the session secret; the form echoes the bare token back and both
// halves must line up.
type Service struct {
	secret []byte
	secure bool
	logger *zap.Logger
}

// NewService builds a CSRF service. The secret must not be empty; callers
// treat a missing secret as a startup failure, not a per-request one.
func NewService(secret string, secure bool, logger *zap.Logger) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("csrf secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		secret: []byte(secret),
		secure: secure,
		logger: logger.Named("CSRFService"),
	}, nil
}

// Issue generates a fresh token and the cookie that must accompany it.
func (s *Service) Issue() (string, *http.Cookie, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}
	token := hex.EncodeToString(buf)

	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token + "." + s.sign(token),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	return token, cookie, nil
}

// Validate checks the token submitted in the form body against the signed
// cookie from the request. Any mismatch or absence yields ErrCSRFMismatch;
// the caller must abort before touching persistence.
func (s *Service) Validate(submittedToken string, r *http.Request) error {
	if submittedToken == "" {
		s.logger.Debug("CSRF token missing from form body")
		return models.ErrCSRFMismatch
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		s.logger.Debug("CSRF cookie missing from request")
		return models.ErrCSRFMismatch
	}

	token, sig, found := strings.Cut(cookie.Value, ".")
	if !found {
		s.logger.Debug("CSRF cookie is not in token.signature form")
		return models.ErrCSRFMismatch
	}
	if !hmac.Equal([]byte(s.sign(token)), []byte(sig)) {
		s.logger.Warn("CSRF cookie signature mismatch")
		return models.ErrCSRFMismatch
	}
	if !hmac.Equal([]byte(token), []byte(submittedToken)) {
		s.logger.Warn("Submitted CSRF token does not match cookie")
		return models.ErrCSRFMismatch
	}
	return nil
}

func (s *Service) sign(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

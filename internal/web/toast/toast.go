// Package toast delivers one-shot, post-redirect notifications. The session
// cookie only carries a signed session id; the payload itself lives in Redis
// and is removed the moment it is read, which gives exactly-once delivery.
package toast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notes-server/internal/models"
)

// CookieName is the session cookie carrying the signed session id.
const CookieName = "notes_session"

// payloadTTL bounds how long an undelivered toast survives.
const payloadTTL = 24 * time.Hour

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Store sets and peeks toast payloads keyed by session.
type Store struct {
	client *redis.Client
	secret []byte
	secure bool
	logger *zap.Logger
}

// NewStore builds a toast store on the given Redis client.
func NewStore(client *redis.Client, secret string, secure bool, logger *zap.Logger) (*Store, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client: client,
		secret: []byte(secret),
		secure: secure,
		logger: logger.Named("ToastStore"),
	}, nil
}

// Set stores the toast for the request's session and returns the session
// cookie that must be committed with the response. A request without a valid
// session cookie gets a fresh session.
func (s *Store) Set(ctx context.Context, r *http.Request, t models.Toast) (*http.Cookie, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	sid, ok := s.sessionID(r)
	if !ok {
		sid = uuid.NewString()
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal toast: %w", err)
	}

	if err := s.client.Set(ctx, toastKey(sid), payload, payloadTTL).Err(); err != nil {
		s.logger.Error("Failed to store toast payload", zap.Error(err), zap.String("sessionID", sid))
		return nil, fmt.Errorf("failed to store toast payload: %w", err)
	}

	cookie, err := s.sessionCookie(sid)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Toast stored", zap.String("sessionID", sid), zap.String("toastID", t.ID))
	return cookie, nil
}

// Peek returns the pending toast for the request's session, removing it in
// the same operation. The second read of the same toast returns nothing.
func (s *Store) Peek(ctx context.Context, r *http.Request) (*models.Toast, error) {
	sid, ok := s.sessionID(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.client.GetDel(ctx, toastKey(sid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.logger.Error("Failed to read toast payload", zap.Error(err), zap.String("sessionID", sid))
		return nil, fmt.Errorf("failed to read toast payload: %w", err)
	}

	var t models.Toast
	if err := json.Unmarshal(payload, &t); err != nil {
		s.logger.Warn("Discarding malformed toast payload", zap.Error(err), zap.String("sessionID", sid))
		return nil, nil
	}
	return &t, nil
}

// sessionID extracts and verifies the session id from the request cookie.
func (s *Store) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.SessionID == "" {
		s.logger.Debug("Ignoring invalid session cookie", zap.Error(err))
		return "", false
	}
	return claims.SessionID, true
}

func (s *Store) sessionCookie(sid string) (*http.Cookie, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func toastKey(sid string) string {
	return fmt.Sprintf("toast:%s", sid)
}

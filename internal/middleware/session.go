package middleware

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"finitefield.org/mall-web/internal/observability"
)

const (
	sessionCookieName = "MALL_WEB_SESSION"
	sessionLifetime   = 30 * 24 * time.Hour
)

// ErrInvalidSessionConfig is returned for unusable cookie keys.
var ErrInvalidSessionConfig = errors.New("session: invalid config")

// SessionData is the payload kept in the signed session cookie. The id keys
// the visitor's directory state and persisted preferences.
type SessionData struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	dirty bool
}

// SessionConfig configures the cookie codec.
type SessionConfig struct {
	HashKey  []byte
	BlockKey []byte
	Secure   bool
	Now      func() time.Time
	// Logger receives cookie encoding failures. Defaults to a no-op logger.
	Logger   *zap.Logger
}

// Sessions loads and persists SessionData through a securecookie codec.
type Sessions struct {
	codec  *securecookie.SecureCookie
	secure bool
	now    func() time.Time
	log    *zap.Logger
}

// NewSessions builds the session middleware. A missing hash key yields a
// process-ephemeral one, so cookies do not survive restarts.
func NewSessions(cfg SessionConfig) (*Sessions, error) {
	if len(cfg.HashKey) == 0 {
		cfg.HashKey = securecookie.GenerateRandomKey(32)
		if cfg.HashKey == nil {
			return nil, fmt.Errorf("%w: generate hash key", ErrInvalidSessionConfig)
		}
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidSessionConfig)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	var block []byte
	if len(cfg.BlockKey) > 0 {
		block = cfg.BlockKey
	}
	codec := securecookie.New(cfg.HashKey, block)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(sessionLifetime.Seconds()))
	return &Sessions{codec: codec, secure: cfg.Secure, now: cfg.Now, log: cfg.Logger}, nil
}

// Secure reports whether cookies carry the Secure attribute.
func (s *Sessions) Secure() bool { return s.secure }

// Middleware loads or initializes a session and stores it in request context.
// The cookie is written right before the first byte of the response when the
// session changed.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd := s.read(r)
		if sd.ID == "" {
			now := s.now().UTC()
			sd = &SessionData{
				ID:        uuid.NewString(),
				CSRFToken: newCSRFToken(),
				CreatedAt: now,
				UpdatedAt: now,
				dirty:     true,
			}
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		ctx = context.WithValue(ctx, ctxKeySecure, s.secure)
		// request loggers attached further down replace this one for handlers
		ctx = observability.WithLogger(ctx, s.log.With(zap.String("request_id", chiMid.GetReqID(ctx))))
		r = r.WithContext(ctx)
		rw := NewResponseRecorder(w)
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty {
				s.write(w, r, sd)
			}
		})
		next.ServeHTTP(rw, r)
		if !rw.Wrote() && sd.dirty {
			s.write(w, r, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request
func (d *SessionData) MarkDirty() { d.dirty = true; d.UpdatedAt = time.Now().UTC() }

func (s *Sessions) read(r *http.Request) *SessionData {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}
	}
	var sd SessionData
	if err := s.codec.Decode(sessionCookieName, c.Value, &sd); err != nil {
		return &SessionData{}
	}
	if _, err := uuid.Parse(sd.ID); err != nil {
		return &SessionData{}
	}
	return &sd
}

func (s *Sessions) write(w http.ResponseWriter, r *http.Request, sd *SessionData) {
	encoded, err := s.codec.Encode(sessionCookieName, sd)
	if err != nil {
		// the visitor keeps the previous cookie, or none for a new session
		observability.FromContext(r.Context()).Error("session: encode cookie",
			zap.String("session_id", sd.ID), zap.Error(err))
		return
	}
	sd.dirty = false
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionLifetime.Seconds()),
	})
}

func newCSRFToken() string {
	return hex.EncodeToString(securecookie.GenerateRandomKey(16))
}

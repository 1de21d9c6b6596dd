package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID ctxKey = "req_id"
	ctxKeyIsHTMX    ctxKey = "is_htmx"
	ctxKeySession   ctxKey = "session"
	ctxKeyTheme     ctxKey = "theme"
	ctxKeyLocaleFB  ctxKey = "locale_fallback"
	ctxKeySecure    ctxKey = "cookie_secure"
)

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithTheme stores the resolved colour theme.
func WithTheme(ctx context.Context, theme string) context.Context {
	return context.WithValue(ctx, ctxKeyTheme, theme)
}

// ThemeFrom returns the colour theme, light by default.
func ThemeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyTheme).(string); ok && v != "" {
		return v
	}
	return ThemeLight
}

func secureCookies(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeySecure).(bool)
	return v
}

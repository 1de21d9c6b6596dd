package middleware

import (
	"net/http"
)

const (
	ThemeLight      = "light"
	ThemeDark       = "dark"
	themeCookieName = "theme"
)

// Theme reads the dark-mode cookie into the request context.
func Theme(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		theme := ThemeLight
		if c, err := r.Cookie(themeCookieName); err == nil && c.Value == ThemeDark {
			theme = ThemeDark
		}
		next.ServeHTTP(w, r.WithContext(WithTheme(r.Context(), theme)))
	})
}

// ToggleTheme flips the stored theme and returns the new value.
func ToggleTheme(w http.ResponseWriter, r *http.Request) string {
	next := ThemeDark
	if ThemeFrom(r.Context()) == ThemeDark {
		next = ThemeLight
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookieName,
		Value:    next,
		Path:     "/",
		Secure:   secureCookies(r.Context()),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	})
	return next
}

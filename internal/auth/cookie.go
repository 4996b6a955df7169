package auth

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// CookieOptions controls how the session cookie is written.
type CookieOptions struct {
	// Secure marks the cookie Secure and SameSite=None so a frontend on
	// another origin can send it over HTTPS.
	Secure bool
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, opts CookieOptions) {
	http.SetCookie(w, newCookie(token, expires, opts))
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	c := newCookie("", time.Unix(0, 0), opts)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func newCookie(value string, expires time.Time, opts CookieOptions) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if opts.Secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: sameSite,
	}
}

// tokenFromRequest reads the session token from the cookie, falling back to
// an Authorization: Bearer header.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

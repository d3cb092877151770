package api

import (
	"net/http"
	"time"
)

const tokenCookieName = "token"

type cookiePolicy struct {
	secure   bool
	sameSite http.SameSite
	ttl      time.Duration
}

// newCookiePolicy mirrors the deployment: cross-site cookies in production,
// strict same-site everywhere else.
func newCookiePolicy(production bool, ttl time.Duration) cookiePolicy {
	if production {
		return cookiePolicy{secure: true, sameSite: http.SameSiteNoneMode, ttl: ttl}
	}
	return cookiePolicy{secure: false, sameSite: http.SameSiteStrictMode, ttl: ttl}
}

func (p cookiePolicy) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: p.sameSite,
		MaxAge:   int(p.ttl.Seconds()),
		Expires:  time.Now().Add(p.ttl),
	})
}

func (p cookiePolicy) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: p.sameSite,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

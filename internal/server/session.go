// session.go - Stateless folder-verification sessions.
//
// The server keeps no session state: the only claim, the id of the folder
// the client last verified a password for, travels in a signed JWT cookie.
// Every allowed action on a protected folder re-issues the cookie with a
// fresh expiry, giving the inactivity window its sliding behavior.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type SessionConfig struct {
	Secret     string
	TTL        time.Duration // inactivity window
	CookieName string

	// Insecure relaxes cookie attributes for plain-HTTP local development.
	// Production serves the SPA from another origin, so the cookie must be
	// SameSite=None, which browsers only accept together with Secure.
	Insecure bool
}

func (s SessionConfig) cookieName() string {
	if s.CookieName == "" {
		return "fv_session"
	}
	return s.CookieName
}

func (s SessionConfig) ttl() time.Duration {
	if s.TTL <= 0 {
		return 10 * time.Minute
	}
	return s.TTL
}

type folderClaims struct {
	FolderID int64 `json:"fid"`
	jwt.RegisteredClaims
}

func (s SessionConfig) cookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     s.cookieName(),
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	}
	if s.Insecure {
		c.SameSite = http.SameSiteLaxMode
		c.Secure = false
	}
	return c
}

// issue sets the session cookie naming folderID as verified.
func (s SessionConfig) issue(w http.ResponseWriter, folderID int64) error {
	now := time.Now()
	exp := now.Add(s.ttl())
	claims := folderClaims{
		FolderID: folderID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(tok, exp))
	return nil
}

// touch re-issues the cookie so the inactivity window restarts.
func (s SessionConfig) touch(w http.ResponseWriter, folderID int64) {
	_ = s.issue(w, folderID)
}

// clear expires the session cookie.
func (s SessionConfig) clear(w http.ResponseWriter) {
	c := s.cookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// verifiedFolder returns the folder id carried by a valid, unexpired session
// cookie. Any parse or signature problem reads as "no claim".
func (s SessionConfig) verifiedFolder(r *http.Request) (int64, bool) {
	c, err := r.Cookie(s.cookieName())
	if err != nil {
		return 0, false
	}

	claims := &folderClaims{}
	tok, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.Secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, false
	}
	return claims.FolderID, true
}

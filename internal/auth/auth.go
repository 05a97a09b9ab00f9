// Package auth identifies callers. The contest administrator logs in with
// a shared password and then carries a session cookie; voters present a
// signed bearer token on each request.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	CookieName    = "contestvote_session"
	SessionExpiry = 24 * time.Hour
)

var passwordWords = []string{
	"shutter", "canvas", "gallery", "frame", "easel",
	"pixel", "lens", "focus", "sketch", "palette",
	"ribbon", "trophy", "judge", "entry", "spotlight",
	"encore", "medal", "podium", "studio",
}

// sessionKey is the digest a session is stored under; raw tokens only
// exist in cookies.
type sessionKey [sha256.Size]byte

func keyOf(token string) sessionKey {
	return sha256.Sum256([]byte(token))
}

// Auth guards the admin API. Sessions live in memory and do not survive a
// restart.
type Auth struct {
	password []byte
	now      func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]time.Time
}

// New returns an Auth accepting password. An empty password disables admin
// login.
func New(password string) *Auth {
	return &Auth{
		password: []byte(password),
		now:      time.Now,
		sessions: make(map[sessionKey]time.Time),
	}
}

// GeneratePassword returns three random words joined by dashes.
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = passwordWords[randomInt(len(passwordWords))]
	}
	return strings.Join(words, "-")
}

// Login opens a session when password matches.
func (a *Auth) Login(password string) (string, bool) {
	if len(a.password) == 0 || subtle.ConstantTimeCompare([]byte(password), a.password) != 1 {
		return "", false
	}

	token := newToken()
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropExpired(now)
	a.sessions[keyOf(token)] = now.Add(SessionExpiry)
	return token, true
}

func (a *Auth) Logout(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, keyOf(token))
}

// ValidateSession reports whether token names a live session. An expired
// session is forgotten on first sight.
func (a *Auth) ValidateSession(token string) bool {
	key := keyOf(token)
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()
	expiry, ok := a.sessions[key]
	if !ok {
		return false
	}
	if now.After(expiry) {
		delete(a.sessions, key)
		return false
	}
	return true
}

// Sessions counts live sessions.
func (a *Auth) Sessions() int {
	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropExpired(now)
	return len(a.sessions)
}

// dropExpired must be called with a.mu held.
func (a *Auth) dropExpired(now time.Time) {
	for key, expiry := range a.sessions {
		if now.After(expiry) {
			delete(a.sessions, key)
		}
	}
}

func (a *Auth) IsAdmin(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	return err == nil && a.ValidateSession(cookie.Value)
}

// RequireAdmin answers 401 unless the request has an admin session.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.IsAdmin(r) {
			unauthorized(w, "admin login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, sessionCookie(token, int(SessionExpiry.Seconds())))
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, sessionCookie("", -1))
}

func sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"code": "UNAUTHORIZED", "error": msg})
}

// newToken returns 32 random bytes hex encoded.
func newToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

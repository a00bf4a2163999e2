// Package session carries one-shot flash messages across redirects in a
// signed cookie.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const flashCookieName = "flash"

const (
	KindSuccess = "success"
	KindError   = "error"
	KindInfo    = "info"
)

type Flash struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
}

type flashKey struct{}

// Flashes signs flash cookies with the application secret.
type Flashes struct {
	secret []byte
}

func NewFlashes(secret string) *Flashes {
	return &Flashes{secret: []byte(secret)}
}

func (f *Flashes) sign(payload string) string {
	mac := hmac.New(sha256.New, f.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Set stores a flash to be shown on the next rendered page.
func (f *Flashes) Set(w http.ResponseWriter, kind, message string) {
	b, _ := json.Marshal(Flash{Kind: kind, Message: message})
	payload := base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    payload + "." + f.sign(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (f *Flashes) Success(w http.ResponseWriter, message string) { f.Set(w, KindSuccess, message) }

func (f *Flashes) Error(w http.ResponseWriter, message string) { f.Set(w, KindError, message) }

// Pop reads and clears the pending flash. Tampered cookies are dropped.
func (f *Flashes) Pop(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return Flash{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true})

	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(f.sign(payload))) {
		return Flash{}, false
	}
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Flash{}, false
	}
	var fl Flash
	if err := json.Unmarshal(b, &fl); err != nil || fl.Message == "" {
		return Flash{}, false
	}
	return fl, true
}

// Middleware pops the pending flash into the request context.
func (f *Flashes) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fl, ok := f.Pop(w, r); ok {
			r = r.WithContext(context.WithValue(r.Context(), flashKey{}, fl))
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the flash popped by Middleware, if any.
func FromContext(ctx context.Context) (Flash, bool) {
	fl, ok := ctx.Value(flashKey{}).(Flash)
	return fl, ok
}

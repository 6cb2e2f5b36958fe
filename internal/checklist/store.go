package checklist

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/securecookie"
)

// Store is a small string key/value store scoped to one visitor.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// cookieMaxAge keeps progress for roughly a year.
const cookieMaxAge = 365 * 24 * 60 * 60

// CookieJar signs store values into browser cookies.
type CookieJar struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewCookieJar builds a jar signing with hashKey. Secure marks cookies
// HTTPS-only.
func NewCookieJar(hashKey []byte, secure bool) (*CookieJar, error) {
	if len(hashKey) < 32 {
		return nil, errors.New("cookie hash key must be at least 32 bytes")
	}
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(cookieMaxAge)
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &CookieJar{codec: codec, secure: secure}, nil
}

// Store binds the jar to one request/response pair.
func (j *CookieJar) Store(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{jar: j, w: w, r: r, written: make(map[string]*string)}
}

// CookieStore reads values from the request and writes changes as
// Set-Cookie headers. Writes are visible to later reads on the same store.
type CookieStore struct {
	jar     *CookieJar
	w       http.ResponseWriter
	r       *http.Request
	written map[string]*string
}

// cookieName maps a store key onto a valid cookie token.
func cookieName(key string) string {
	return strings.ReplaceAll(key, ":", ".")
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	name := cookieName(key)
	c, err := s.r.Cookie(name)
	if err != nil {
		return "", false
	}
	var value string
	if err := s.jar.codec.Decode(name, c.Value, &value); err != nil {
		return "", false
	}
	return value, true
}

func (s *CookieStore) Set(key, value string) error {
	name := cookieName(key)
	encoded, err := s.jar.codec.Encode(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		Expires:  time.Now().Add(cookieMaxAge * time.Second),
		HttpOnly: true,
		Secure:   s.jar.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.written[key] = &value
	return nil
}

func (s *CookieStore) Delete(key string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     cookieName(key),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.jar.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.written[key] = nil
	return nil
}

// Package session holds the client-local state shared by every view: the
// bearer token, the UI language and the last selected device. It is persisted
// as TOML in ~/.config/homedash/session.toml.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const (
	defaultSessionPath = "~/.config/homedash/session.toml"

	// DefaultLanguage is used when nothing has been stored.
	DefaultLanguage = "en"
)

// ErrInvalidLanguage is returned for codes that are not a two-letter base
// language.
var ErrInvalidLanguage = errors.New("invalid language code")

// record is the on-disk layout.
type record struct {
	Token          string `toml:"token"`
	Language       string `toml:"language"`
	SelectedDevice string `toml:"selectedDevice"`
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	path   string
	values record
}

// New returns an unsaved session bound to path. Empty path uses the default.
func New(path string) *Session {
	if strings.TrimSpace(path) == "" {
		path = defaultSessionPath
	}
	return &Session{path: path, values: record{Language: DefaultLanguage}}
}

// Load reads the session file. A missing file yields defaults.
func Load(path string) (*Session, error) {
	s := New(path)
	if err := s.Reload(); err != nil {
		return s, err
	}
	return s, nil
}

// Reload replaces the in-memory values from disk.
func (s *Session) Reload() error {
	resolved, err := expandPath(s.path)
	if err != nil {
		return fmt.Errorf("resolve session path: %w", err)
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session: %w", err)
	}
	var rec record
	if err := toml.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("parse session: %w", err)
	}
	if code, err := canonicalLanguage(rec.Language); err == nil && code != "" {
		rec.Language = code
	} else {
		rec.Language = DefaultLanguage
	}

	s.mu.Lock()
	s.values = rec
	s.mu.Unlock()
	return nil
}

// Save writes the session to disk, creating directories as needed. The file
// holds a credential, so it is written owner-only.
func (s *Session) Save() error {
	resolved, err := expandPath(s.path)
	if err != nil {
		return fmt.Errorf("resolve session path: %w", err)
	}
	s.mu.RLock()
	rec := s.values
	s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(resolved, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Token returns the stored bearer token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Token
}

// SetToken stores a bearer token.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.values.Token = strings.TrimSpace(token)
	s.mu.Unlock()
}

// LoggedIn reports whether a token is stored.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Language returns the two-letter UI language.
func (s *Session) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.values.Language == "" {
		return DefaultLanguage
	}
	return s.values.Language
}

// SetLanguage validates and stores a language code such as "en" or "ms-MY".
// Only the base language is kept.
func (s *Session) SetLanguage(code string) error {
	canonical, err := canonicalLanguage(code)
	if err != nil {
		return err
	}
	if canonical == "" {
		canonical = DefaultLanguage
	}
	s.mu.Lock()
	s.values.Language = canonical
	s.mu.Unlock()
	return nil
}

// SelectedDevice returns the last selected device pointer.
func (s *Session) SelectedDevice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.SelectedDevice
}

// SelectDevice stores the last selected device pointer.
func (s *Session) SelectDevice(name string) {
	s.mu.Lock()
	s.values.SelectedDevice = strings.TrimSpace(name)
	s.mu.Unlock()
}

// ClearCredentials drops the token and the selected device. The language
// survives.
func (s *Session) ClearCredentials() {
	s.mu.Lock()
	s.values.Token = ""
	s.values.SelectedDevice = ""
	s.mu.Unlock()
}

// Expired reports whether the stored token is a JWT whose exp claim is at or
// before now. Opaque tokens and tokens without exp are never expired here;
// the backend stays the authority. A missing token counts as expired.
func (s *Session) Expired(now time.Time) bool {
	token := s.Token()
	if token == "" {
		return true
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}

func canonicalLanguage(code string) (string, error) {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return "", nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", errors.Join(ErrInvalidLanguage, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", ErrInvalidLanguage
	}
	b := base.String()
	if len(b) != 2 {
		return "", fmt.Errorf("%w: %q has no two-letter form", ErrInvalidLanguage, code)
	}
	return b, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// Package i18n looks up UI strings by language code.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

// Bundle is an immutable translation table.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported []string
	matcher   language.Matcher
}

// Default loads the embedded locales with English as fallback.
func Default() *Bundle {
	b, err := Load(embedded, "locales", "en", nil)
	if err != nil {
		panic(fmt.Sprintf("embedded locales: %v", err))
	}
	return b
}

// ForLanguages restricts the embedded locales to langs. English stays the
// fallback when listed, otherwise the first entry is.
func ForLanguages(langs []string) (*Bundle, error) {
	if len(langs) == 0 {
		return Default(), nil
	}
	fallback := langs[0]
	if slices.Contains(langs, "en") {
		fallback = "en"
	}
	return Load(embedded, "locales", fallback, langs)
}

// Load reads <lang>.json files from dir in fsys. When supported is empty
// every JSON file in dir is loaded. The fallback locale must exist.
func Load(fsys fs.FS, dir, fallback string, supported []string) (*Bundle, error) {
	if len(supported) == 0 {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("list locales: %w", err)
		}
		for _, e := range entries {
			if name := e.Name(); !e.IsDir() && strings.HasSuffix(name, ".json") {
				supported = append(supported, strings.TrimSuffix(name, ".json"))
			}
		}
	}

	b := &Bundle{dict: map[string]map[string]string{}, fallback: fallback}
	for _, l := range supported {
		raw, err := fs.ReadFile(fsys, path.Join(dir, l+".json"))
		if err != nil {
			// allow missing file for non-default locales
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
		b.supported = append(b.supported, l)
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}
	slices.Sort(b.supported)

	// The matcher's first tag is its default, so the fallback goes first.
	tags := []language.Tag{language.Make(fallback)}
	for _, l := range b.supported {
		if l != fallback {
			tags = append(tags, language.Make(l))
		}
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Supported lists loaded languages in sorted order.
func (b *Bundle) Supported() []string {
	return slices.Clone(b.supported)
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if m, ok := b.dict[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Format is T with {name} placeholders replaced from args, given as
// alternating name/value pairs.
func (b *Bundle) Format(lang, key string, args ...string) string {
	out := b.T(lang, key)
	for i := 0; i+1 < len(args); i += 2 {
		out = strings.ReplaceAll(out, "{"+args[i]+"}", args[i+1])
	}
	return out
}

// Match picks the best supported language for a locale string such as
// "ms_MY.UTF-8" or "zh-Hant".
func (b *Bundle) Match(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return b.fallback
	}
	_, idx, confidence := b.matcher.Match(language.Make(locale))
	if confidence == language.No {
		return b.fallback
	}
	if idx == 0 {
		return b.fallback
	}
	rest := make([]string, 0, len(b.supported))
	for _, l := range b.supported {
		if l != b.fallback {
			rest = append(rest, l)
		}
	}
	return rest[idx-1]
}

// Next returns the supported language after lang, wrapping around.
func (b *Bundle) Next(lang string) string {
	i := slices.Index(b.supported, lang)
	return b.supported[(i+1)%len(b.supported)]
}

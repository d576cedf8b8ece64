// Package i18n loads the site's translation bundles and formats
// locale-sensitive values.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

const (
	DefaultLocale = "en-NZ"
	namespace     = "common.json"
)

//go:embed locales/*/common.json
var localesFS embed.FS

// Bundle holds the flattened messages of every supported locale.
type Bundle struct {
	defaultLocale string
	locales       []string
	messages      map[string]map[string]string
	matcher       language.Matcher
}

// Load reads the embedded locale files.
func Load() (*Bundle, error) {
	sub, err := fs.Sub(localesFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("open embedded locales: %w", err)
	}
	return LoadFS(sub, DefaultLocale)
}

// LoadFS reads {locale}/common.json for every directory in fsys.
func LoadFS(fsys fs.FS, defaultLocale string) (*Bundle, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}

	b := &Bundle{
		defaultLocale: defaultLocale,
		messages:      make(map[string]map[string]string),
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		data, err := fs.ReadFile(fsys, path.Join(locale, namespace))
		if err != nil {
			return nil, fmt.Errorf("read %s translations: %w", locale, err)
		}
		tree, err := ParseTree(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", locale, err)
		}

		flat := make(map[string]string)
		walk(tree, nil, false, func(p []string, value string) {
			flat[strings.Join(p, ".")] = value
		})
		b.messages[locale] = flat
		b.locales = append(b.locales, locale)
	}

	if _, ok := b.messages[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %s has no translations", defaultLocale)
	}

	// The default locale goes first so it wins matcher ties.
	sort.SliceStable(b.locales, func(i, j int) bool {
		return b.locales[i] == defaultLocale && b.locales[j] != defaultLocale
	})
	tags := make([]language.Tag, 0, len(b.locales))
	for _, locale := range b.locales {
		tags = append(tags, language.Make(locale))
	}
	b.matcher = language.NewMatcher(tags)

	return b, nil
}

func (b *Bundle) Locales() []string {
	return append([]string(nil), b.locales...)
}

func (b *Bundle) DefaultLocale() string {
	return b.defaultLocale
}

// Supports reports whether locale has its own bundle.
func (b *Bundle) Supports(locale string) bool {
	_, ok := b.messages[locale]
	return ok
}

// T renders key in locale, falling back to the default locale and then to
// the key itself. {{name}} placeholders are replaced from data.
func (b *Bundle) T(locale, key string, data map[string]any) string {
	msg, ok := b.messages[locale][key]
	if !ok {
		msg, ok = b.messages[b.defaultLocale][key]
	}
	if !ok {
		return key
	}
	for name, value := range data {
		msg = strings.ReplaceAll(msg, "{{"+name+"}}", fmt.Sprint(value))
	}
	return msg
}

// Match picks the first supported locale among the candidates, each of
// which may be a locale code or an Accept-Language header value.
func (b *Bundle) Match(candidates ...string) string {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if b.Supports(candidate) {
			return candidate
		}
		tags, _, err := language.ParseAcceptLanguage(candidate)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, index, confidence := b.matcher.Match(tags...)
		if confidence >= language.High {
			return b.locales[index]
		}
	}
	return b.defaultLocale
}

// Localizer binds a bundle to one locale for rendering.
type Localizer struct {
	bundle *Bundle
	Locale string
}

func (b *Bundle) For(locale string) Localizer {
	if !b.Supports(locale) {
		locale = b.defaultLocale
	}
	return Localizer{bundle: b, Locale: locale}
}

func (l Localizer) T(key string, data map[string]any) string {
	if l.bundle == nil {
		return key
	}
	return l.bundle.T(l.Locale, key, data)
}

package domain

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Category is a named, ordered collection of dork fragments.
// Fragments have no identity of their own: they are addressed by position in
// Items, so every structural mutation must go through the selection remap.
type Category struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Items    []string          `json:"items"`
	Tooltips map[string]string `json:"tooltips,omitempty"`
}

// NewCategory creates an empty category with the given key and label
func NewCategory(key, label string) *Category {
	return &Category{
		Key:      key,
		Label:    label,
		Items:    []string{},
		Tooltips: map[string]string{},
	}
}

// ValidIndex reports whether i addresses an existing fragment
func (c *Category) ValidIndex(i int) bool {
	return i >= 0 && i < len(c.Items)
}

// Clone returns a deep copy of the category
func (c *Category) Clone() *Category {
	clone := &Category{
		Key:   c.Key,
		Label: c.Label,
		Items: append([]string{}, c.Items...),
	}
	if c.Tooltips != nil {
		clone.Tooltips = make(map[string]string, len(c.Tooltips))
		for k, v := range c.Tooltips {
			clone.Tooltips[k] = v
		}
	}
	return clone
}

// DefaultCategories returns the built-in seed set used when the backing
// store is absent or empty
func DefaultCategories() []*Category {
	return []*Category{
		{
			Key:      "files",
			Label:    "Files",
			Items:    []string{"ext:pdf", "ext:docx", "ext:xlsx", "ext:txt"},
			Tooltips: map[string]string{},
		},
		{
			Key:      "content",
			Label:    "Content",
			Items:    []string{`intitle:"index of"`, "inurl:login", "site:{domain}"},
			Tooltips: map[string]string{},
		},
		{
			Key:      "secrets",
			Label:    "Secrets",
			Items:    []string{"filetype:env", "password", `"API Key"`, "inurl:config"},
			Tooltips: map[string]string{},
		},
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Slugify derives a category key from a display label: accents are
// decomposed away, only alphanumerics, spaces, hyphens and underscores are
// kept, and whitespace collapses to single hyphens. Falls back to "category"
// when nothing survives.
func Slugify(label string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(label) {
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark from decomposition
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s := strings.ToLower(strings.TrimSpace(b.String()))
	s = whitespaceRe.ReplaceAllString(s, "-")
	if s == "" {
		return "category"
	}
	return s
}

// UniqueKey disambiguates base against taken keys by appending a numeric
// suffix (-2, -3, ...) until the key is free
func UniqueKey(base string, taken func(string) bool) string {
	key := base
	for i := 2; taken(key); i++ {
		key = base + "-" + strconv.Itoa(i)
	}
	return key
}

// LegacyLabel derives a display label from a legacy flat-schema key
func LegacyLabel(key string) string {
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + strings.ToLower(key[1:])
}

package domain

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Part is one element of a composed query: a plain token, a negated token,
// or a parenthesized OR alternation. Classification is kept separate from
// rendering so the selection engine can work purely on indices.
type Part interface {
	isPart()
}

// Token is a plain fragment
type Token struct {
	Text string
}

// NegatedToken renders its token with an exclusion prefix
type NegatedToken struct {
	Token Token
}

// OrGroup renders its tokens as a parenthesized OR alternation
type OrGroup struct {
	Tokens []Token
}

func (Token) isPart()        {}
func (NegatedToken) isPart() {}
func (OrGroup) isPart()      {}

// varRe matches {identifier} placeholders in fragment text
var varRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// QueryBuilder assembles an ordered list of parts and renders them to a
// query string, substituting {name} variables at render time
type QueryBuilder struct {
	parts []Part
	vars  map[string]string
}

// NewQueryBuilder creates an empty builder
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{vars: map[string]string{}}
}

// Add appends a plain token
func (b *QueryBuilder) Add(text string) {
	b.parts = append(b.parts, Token{Text: text})
}

// AddNegated appends a negated token
func (b *QueryBuilder) AddNegated(text string) {
	b.parts = append(b.parts, NegatedToken{Token: Token{Text: text}})
}

// AddOrGroup appends an OR-group built from texts. Blank texts are dropped;
// if nothing survives, no part is appended at all.
func (b *QueryBuilder) AddOrGroup(texts []string) {
	toks := make([]Token, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			toks = append(toks, Token{Text: t})
		}
	}
	if len(toks) > 0 {
		b.parts = append(b.parts, OrGroup{Tokens: toks})
	}
}

// Clear resets the part list. The variable map is untouched.
func (b *QueryBuilder) Clear() {
	b.parts = nil
}

// SetVariables replaces the variable map wholesale
func (b *QueryBuilder) SetVariables(vars map[string]string) {
	b.vars = make(map[string]string, len(vars))
	for k, v := range vars {
		b.vars[k] = v
	}
}

// Substitute replaces each {name} placeholder with its mapped value.
// Unresolved placeholders pass through literally.
func (b *QueryBuilder) Substitute(s string) string {
	return varRe.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := b.vars[name]; ok {
			return v
		}
		return m
	})
}

// Build renders the parts in order, joined by single spaces. Parts that
// substitute to the empty string are dropped from the join.
func (b *QueryBuilder) Build() string {
	out := make([]string, 0, len(b.parts))
	for _, p := range b.parts {
		var rendered string
		switch part := p.(type) {
		case Token:
			rendered = b.Substitute(part.Text)
		case NegatedToken:
			rendered = "-" + b.Substitute(part.Token.Text)
		case OrGroup:
			subs := make([]string, 0, len(part.Tokens))
			for _, t := range part.Tokens {
				subs = append(subs, b.Substitute(t.Text))
			}
			rendered = "(" + strings.Join(subs, " OR ") + ")"
		}
		rendered = strings.TrimSpace(rendered)
		if rendered != "" {
			out = append(out, rendered)
		}
	}
	return strings.Join(out, " ")
}

// SearchURL percent-encodes the built query into the given search-engine
// URL template (a format with a single %s for the encoded query)
func (b *QueryBuilder) SearchURL(template string) string {
	return strings.Replace(template, "%s", url.QueryEscape(b.Build()), 1)
}

// PlaceholderNames returns the distinct {name} identifiers found in texts,
// sorted for stable presentation
func PlaceholderNames(texts []string) []string {
	seen := map[string]struct{}{}
	for _, t := range texts {
		for _, m := range varRe.FindAllStringSubmatch(t, -1) {
			seen[m[1]] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

package monaco

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"
)

// StyleClassPrefix prefixes every generated class name.
const StyleClassPrefix = "mb-style-"

// CSSStyle is an inline style request attached to a decoration. The bridge
// turns it into a generated CSS class whose name is derived from the
// declarations, so identical styles always share one rule.
type CSSStyle struct {
	BackgroundColor string
	Color           string
	FontWeight      string
	FontStyle       string
	TextDecoration  string
	Border          string
	Cursor          string
	// GlyphImage is an image URL, meant for glyph margin styles.
	GlyphImage string
	// Extra holds any other declarations, keyed by CSS property name.
	Extra map[string]string
}

// Declaration is one CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// Declarations returns the canonical declaration list: empty values and
// malformed entries dropped, typed fields taking precedence over Extra,
// sorted by property name.
func (s CSSStyle) Declarations() []Declaration {
	props := make(map[string]string, len(s.Extra)+8)
	for k, v := range s.Extra {
		props[strings.ToLower(strings.TrimSpace(k))] = v
	}

	typed := map[string]string{
		"background-color": s.BackgroundColor,
		"color":            s.Color,
		"font-weight":      s.FontWeight,
		"font-style":       s.FontStyle,
		"text-decoration":  s.TextDecoration,
		"border":           s.Border,
		"cursor":           s.Cursor,
	}
	for k, v := range typed {
		if strings.TrimSpace(v) != "" {
			props[k] = v
		}
	}
	// The image URL is checked on its own: data URIs carry ';'.
	glyph, hasGlyph := cssURL(s.GlyphImage)
	if hasGlyph {
		delete(props, "background-image")
		props["background-size"] = "contain"
		props["background-repeat"] = "no-repeat"
		props["background-position"] = "center"
	}

	decls := make([]Declaration, 0, len(props)+1)
	for k, v := range props {
		v = strings.TrimSpace(v)
		if v == "" || !validProperty(k) || !validValue(v) {
			continue
		}
		decls = append(decls, Declaration{Property: k, Value: v})
	}
	if hasGlyph {
		decls = append(decls, Declaration{Property: "background-image", Value: glyph})
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Property < decls[j].Property })
	return decls
}

// IsEmpty reports whether the style carries no usable declaration.
func (s CSSStyle) IsEmpty() bool {
	return len(s.Declarations()) == 0
}

// canonical serializes the declarations in their stable order.
func canonical(decls []Declaration) string {
	var sb strings.Builder
	for _, d := range decls {
		sb.WriteString(d.Property)
		sb.WriteByte(':')
		sb.WriteString(d.Value)
		sb.WriteByte(';')
	}
	return sb.String()
}

// ClassName returns the generated class for this style, or "" when the style
// is empty. The name is a 128-bit hash of the canonical declarations.
func (s CSSStyle) ClassName() string {
	decls := s.Declarations()
	if len(decls) == 0 {
		return ""
	}
	return className(decls)
}

func className(decls []Declaration) string {
	h := xxh3.HashString128(canonical(decls))
	return fmt.Sprintf("%s%016x%016x", StyleClassPrefix, h.Hi, h.Lo)
}

// CSS renders the style as a single rule for its generated class.
func (s CSSStyle) CSS() string {
	decls := s.Declarations()
	if len(decls) == 0 {
		return ""
	}
	return renderRule(className(decls), decls)
}

func renderRule(name string, decls []Declaration) string {
	var sb strings.Builder
	sb.WriteByte('.')
	sb.WriteString(name)
	sb.WriteString(" {")
	for _, d := range decls {
		sb.WriteByte(' ')
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
		sb.WriteByte(';')
	}
	sb.WriteString(" }")
	return sb.String()
}

func validProperty(p string) bool {
	if p == "" {
		return false
	}
	for _, r := range p {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}

// cssURL quotes u as a CSS url() value. URLs that could leave the quoted
// string, the rule or the style element are rejected.
func cssURL(u string) (string, bool) {
	u = strings.TrimSpace(u)
	if u == "" || strings.ContainsAny(u, "\"{}<>\\\n\r\f") {
		return "", false
	}
	return `url("` + u + `")`, true
}

// validValue rejects values that could close the rule or the style element.
func validValue(v string) bool {
	return !strings.ContainsAny(v, "{};<>")
}

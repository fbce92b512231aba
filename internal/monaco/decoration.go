package monaco

import "strings"

// DecorationOptions describes how a decoration is drawn. Each class slot can
// be filled with a plain class name, a CSSStyle, or both; styles are turned
// into generated classes when the decoration is resolved.
type DecorationOptions struct {
	ClassName            string
	InlineClassName      string
	GlyphMarginClassName string

	Style       *CSSStyle
	InlineStyle *CSSStyle
	GlyphStyle  *CSSStyle

	HoverMessage            []MarkdownString
	GlyphMarginHoverMessage []MarkdownString
	IsWholeLine             bool
	Stickiness              TrackedRangeStickiness
	ZIndex                  int
}

// DecorationRequest is one entry of the host's decoration collection.
type DecorationRequest struct {
	Range   Range
	Options DecorationOptions
}

// Styles returns the non-empty styles the request references.
func (d DecorationRequest) Styles() []CSSStyle {
	var out []CSSStyle
	for _, s := range []*CSSStyle{d.Options.Style, d.Options.InlineStyle, d.Options.GlyphStyle} {
		if s != nil && !s.IsEmpty() {
			out = append(out, *s)
		}
	}
	return out
}

// ModelDecorationOptions is the wire form of DecorationOptions.
type ModelDecorationOptions struct {
	ClassName               string                 `json:"className,omitempty"`
	InlineClassName         string                 `json:"inlineClassName,omitempty"`
	GlyphMarginClassName    string                 `json:"glyphMarginClassName,omitempty"`
	HoverMessage            []MarkdownString       `json:"hoverMessage,omitempty"`
	GlyphMarginHoverMessage []MarkdownString       `json:"glyphMarginHoverMessage,omitempty"`
	IsWholeLine             bool                   `json:"isWholeLine,omitempty"`
	Stickiness              TrackedRangeStickiness `json:"stickiness,omitempty"`
	ZIndex                  int                    `json:"zIndex,omitempty"`
}

// ModelDeltaDecoration is what the view's updateDecorations receives.
type ModelDeltaDecoration struct {
	Range   Range                  `json:"range"`
	Options ModelDecorationOptions `json:"options"`
}

// Resolve converts the request into its wire form, replacing styles with
// their generated class names. The request itself is not modified.
func (d DecorationRequest) Resolve() ModelDeltaDecoration {
	o := d.Options
	return ModelDeltaDecoration{
		Range: d.Range,
		Options: ModelDecorationOptions{
			ClassName:               joinClasses(o.ClassName, o.Style),
			InlineClassName:         joinClasses(o.InlineClassName, o.InlineStyle),
			GlyphMarginClassName:    joinClasses(o.GlyphMarginClassName, o.GlyphStyle),
			HoverMessage:            o.HoverMessage,
			GlyphMarginHoverMessage: o.GlyphMarginHoverMessage,
			IsWholeLine:             o.IsWholeLine,
			Stickiness:              o.Stickiness,
			ZIndex:                  o.ZIndex,
		},
	}
}

// ResolveAll resolves a snapshot. A nil snapshot yields an empty, non-nil
// slice so the view always receives an array.
func ResolveAll(reqs []DecorationRequest) []ModelDeltaDecoration {
	out := make([]ModelDeltaDecoration, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Resolve())
	}
	return out
}

func joinClasses(name string, style *CSSStyle) string {
	generated := ""
	if style != nil {
		generated = style.ClassName()
	}
	return strings.TrimSpace(strings.TrimSpace(name) + " " + generated)
}

package bridge

import (
	"sort"
	"strings"
	"testing"

	"go-monaco-bridge/internal/monaco"
)

func styled(line int, s monaco.CSSStyle) monaco.DecorationRequest {
	return monaco.DecorationRequest{
		Range:   monaco.LineRange(line),
		Options: monaco.DecorationOptions{IsWholeLine: true, Style: &s},
	}
}

func TestAssociateStylesReportsOnlyNewRules(t *testing.T) {
	b := NewStyleBroker()
	yellow := monaco.CSSStyle{BackgroundColor: "yellow"}
	red := monaco.CSSStyle{BackgroundColor: "red"}

	if !b.AssociateStyles([]monaco.DecorationRequest{styled(1, yellow), styled(2, yellow)}) {
		t.Fatal("first association reported no change")
	}
	if b.Len() != 1 {
		t.Fatalf("identical styles produced %d rules", b.Len())
	}
	if b.AssociateStyles([]monaco.DecorationRequest{styled(5, yellow)}) {
		t.Fatal("known style reported a change")
	}
	if !b.AssociateStyles([]monaco.DecorationRequest{styled(5, yellow), styled(6, red)}) {
		t.Fatal("new style reported no change")
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
}

func TestAssociateStylesIgnoresUnstyledRequests(t *testing.T) {
	b := NewStyleBroker()
	plain := monaco.DecorationRequest{
		Range:   monaco.LineRange(1),
		Options: monaco.DecorationOptions{ClassName: "squiggly-error", InlineStyle: &monaco.CSSStyle{}},
	}
	if b.AssociateStyles([]monaco.DecorationRequest{plain}) {
		t.Fatal("unstyled request added a rule")
	}
	if b.AssociateStyles(nil) {
		t.Fatal("empty snapshot added a rule")
	}
	if b.Styles() != "" {
		t.Fatalf("Styles = %q", b.Styles())
	}
}

func TestStylesListsEveryRule(t *testing.T) {
	b := NewStyleBroker()
	glyph := monaco.CSSStyle{GlyphImage: "https://example.com/bp.svg"}
	inline := monaco.CSSStyle{TextDecoration: "underline"}
	req := monaco.DecorationRequest{
		Range:   monaco.LineRange(1),
		Options: monaco.DecorationOptions{GlyphStyle: &glyph, InlineStyle: &inline},
	}
	b.AssociateStyles([]monaco.DecorationRequest{req})

	css := b.Styles()
	for _, s := range []monaco.CSSStyle{glyph, inline} {
		if !strings.Contains(css, s.CSS()) {
			t.Errorf("Styles missing %q", s.CSS())
		}
	}

	rules := b.Rules()
	if len(rules) != 2 || rules[0].ClassName != glyph.ClassName() || rules[1].ClassName != inline.ClassName() {
		t.Fatalf("Rules = %+v", rules)
	}
}

// Whatever order the same snapshots arrive in, the broker ends up with the
// same rules, and every class the final snapshot references is installed.
func TestStyleConvergence(t *testing.T) {
	colors := []string{"red", "green", "blue", "orange"}
	snapshots := make([][]monaco.DecorationRequest, len(colors))
	for i, c := range colors {
		snapshots[i] = []monaco.DecorationRequest{styled(i+1, monaco.CSSStyle{Color: c})}
	}
	final := []monaco.DecorationRequest{
		styled(1, monaco.CSSStyle{Color: "red"}),
		styled(9, monaco.CSSStyle{Color: "purple", FontWeight: "bold"}),
	}

	orders := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}}
	var first []string
	for _, order := range orders {
		b := NewStyleBroker()
		for _, i := range order {
			b.AssociateStyles(snapshots[i])
		}
		b.AssociateStyles(final)

		installed := map[string]bool{}
		var names []string
		for _, r := range b.Rules() {
			installed[r.ClassName] = true
			names = append(names, r.ClassName)
		}
		for _, d := range monaco.ResolveAll(final) {
			for _, class := range strings.Fields(d.Options.ClassName) {
				if !installed[class] {
					t.Fatalf("order %v: class %s referenced but not installed", order, class)
				}
			}
		}

		sort.Strings(names)
		if first == nil {
			first = names
			continue
		}
		if strings.Join(first, ",") != strings.Join(names, ",") {
			t.Fatalf("order %v produced rules %v, want %v", order, names, first)
		}
	}
}

func TestDisposeForgetsRules(t *testing.T) {
	b := NewStyleBroker()
	b.AssociateStyles([]monaco.DecorationRequest{styled(1, monaco.CSSStyle{Color: "red"})})
	b.Dispose()
	if b.Len() != 0 {
		t.Fatalf("Len = %d after Dispose", b.Len())
	}
	if !b.AssociateStyles([]monaco.DecorationRequest{styled(1, monaco.CSSStyle{Color: "red"})}) {
		t.Fatal("rule not re-added after Dispose")
	}
}

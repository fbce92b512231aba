package bridge

import (
	"strings"
	"sync"

	"go-monaco-bridge/internal/monaco"
)

// StyleRule is one generated CSS class and its rule text.
type StyleRule struct {
	ClassName string
	CSS       string
}

// StyleBroker tracks the CSS rules installed in the view for decoration
// styles. Rules are keyed by their content-addressed class name and are never
// removed, so the installed set only grows.
type StyleBroker struct {
	mu    sync.Mutex
	rules map[string]string
	order []string
}

// NewStyleBroker returns an empty broker.
func NewStyleBroker() *StyleBroker {
	return &StyleBroker{rules: make(map[string]string)}
}

// AssociateStyles records the rules needed by reqs. It reports true when at
// least one new rule was added, meaning the view needs a style update before
// the decorations are applied.
func (b *StyleBroker) AssociateStyles(reqs []monaco.DecorationRequest) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := false
	for _, r := range reqs {
		for _, s := range r.Styles() {
			name, css := s.ClassName(), s.CSS()
			if existing, ok := b.rules[name]; ok {
				if existing != css {
					log.Errorf("style class %s already bound to different rule, keeping the first", name)
				}
				continue
			}
			b.rules[name] = css
			b.order = append(b.order, name)
			changed = true
		}
	}
	return changed
}

// Styles returns the full rule set as CSS text, in the order rules were added.
func (b *StyleBroker) Styles() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	css := make([]string, len(b.order))
	for i, name := range b.order {
		css[i] = b.rules[name]
	}
	return strings.Join(css, "\n")
}

// Rules returns the tracked rules in insertion order.
func (b *StyleBroker) Rules() []StyleRule {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]StyleRule, len(b.order))
	for i, name := range b.order {
		out[i] = StyleRule{ClassName: name, CSS: b.rules[name]}
	}
	return out
}

// Len returns the number of tracked rules.
func (b *StyleBroker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

// Dispose forgets every rule.
func (b *StyleBroker) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.rules)
	b.order = nil
}

package render

import (
	"strings"
	"testing"
)

func TestRenderShellFillsPlaceholders(t *testing.T) {
	r := NewRenderer("")
	page, err := r.RenderShell(ShellOptions{Title: "main.go", MonacoBase: "https://cdn.example.com/monaco/", SocketPath: "/bridge"})
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(page, "{{") {
		t.Fatal("page still contains template placeholders")
	}
	for _, want := range []string{
		"<title>main.go</title>",
		`src="https://cdn.example.com/monaco/vs/loader.js"`,
		`const socketPath = "/bridge";`,
		`<style id="dynamic"></style>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRenderShellDefaults(t *testing.T) {
	page, err := NewRenderer("").RenderShell(ShellOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page, DefaultMonacoBase+"/vs/loader.js") {
		t.Error("default Monaco base not used")
	}
	if !strings.Contains(page, `const socketPath = "/ws";`) {
		t.Error("default socket path not used")
	}
}

func TestRenderShellEscapesTitle(t *testing.T) {
	page, err := NewRenderer("").RenderShell(ShellOptions{Title: "<script>x</script>"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(page, "<title><script>") {
		t.Fatal("title was not escaped")
	}
}

func TestHoverMarkdown(t *testing.T) {
	r := NewRenderer("monokai")
	got, err := r.HoverMarkdown("**func** `Foo`\n\n```go\nfunc Foo() {}\n```\n")
	if err != nil {
		t.Fatal(err)
	}
	if !got.SupportHTML || got.IsTrusted {
		t.Fatalf("flags = supportHtml %v trusted %v", got.SupportHTML, got.IsTrusted)
	}
	if !strings.Contains(got.Value, "<strong>func</strong>") {
		t.Errorf("bold not rendered: %s", got.Value)
	}
	if !strings.Contains(got.Value, `class="chroma"`) {
		t.Errorf("code block not highlighted with classes: %s", got.Value)
	}
}

func TestHoverMarkdownDropsRawHTML(t *testing.T) {
	got, err := NewRenderer("").HoverMarkdown("hello <img src=x onerror=alert(1)>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got.Value, "<img") {
		t.Fatalf("raw HTML passed through: %s", got.Value)
	}
}

func TestHighlightCSS(t *testing.T) {
	css, err := NewRenderer("").HighlightCSS()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Fatalf("stylesheet has no chroma rules: %.80s", css)
	}
}

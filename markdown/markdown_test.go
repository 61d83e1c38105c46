package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"# Heading 1", []string{"<h1", `id="heading-1"`, "Heading 1</h1>"}},
		{"## Heading 2", []string{"<h2", "Heading 2</h2>"}},
		{"### Reference", []string{"<h3", `id="reference"`, "Reference</h3>"}},
	}
	for _, tt := range tests {
		got := RenderString(tt.input)
		for _, want := range tt.expected {
			if !strings.Contains(got, want) {
				t.Errorf("RenderString(%q) = %q, missing %q", tt.input, got, want)
			}
		}
	}
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"`code`", "<code>code</code>"},
		{"[site](https://example.com)", `href="https://example.com"`},
	}
	for _, tt := range tests {
		got := RenderString(tt.input)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("RenderString(%q) = %q, want substring %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := RenderString("```go\nfmt.Println(\"hello\")\n```\n")
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("code block should keep language class: %q", got)
	}
	if !strings.Contains(got, "<pre>") {
		t.Errorf("code block should be wrapped in pre: %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	got := RenderString("| a | b |\n|---|---|\n| 1 | 2 |\n")
	for _, want := range []string{"<table>", "<th>a</th>", "<td>1</td>", "<td>2</td>"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q: %q", want, got)
		}
	}
}

func TestRenderStripsUnsafeMarkup(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		forbidden string
	}{
		{"script", "<script>alert(1)</script>", "<script"},
		{"style block", "<style>\np { font-family: sans; }\n</style>\n\ntext", "<style"},
		{"javascript link", "[x](javascript:alert(1))", `href="javascript`},
		{"event handler", `<p onclick="steal()">hi</p>`, "onclick"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderString(tt.input)
			if strings.Contains(got, tt.forbidden) {
				t.Errorf("RenderString(%q) = %q, should not contain %q", tt.input, got, tt.forbidden)
			}
		})
	}
}

func TestRenderKeepsReferenceMarkup(t *testing.T) {
	input := `1. <p id="doe2020"> <span style="font-variant: small-caps"> Doe, J. </span> 2020 <a href="https://doi.org/10.1/x"> A title. </a></p>`
	got := RenderString(input)
	for _, want := range []string{`id="doe2020"`, "small-caps", `href="https://doi.org/10.1/x"`, "<ol>"} {
		if !strings.Contains(got, want) {
			t.Errorf("reference output missing %q: %q", want, got)
		}
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("hello **world**").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "<strong>world</strong>") {
		t.Errorf("component output = %q", buf.String())
	}
}

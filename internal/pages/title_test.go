package pages

import (
	"strings"
	"testing"
)

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "title tag",
			content: "<html><head><title>Hello World</title></head></html>",
			want:    "Hello World",
		},
		{
			name:    "title tag case insensitive",
			content: "<TITLE>Shouty</TITLE>",
			want:    "Shouty",
		},
		{
			name:    "title tag with attributes",
			content: `<title lang="en">Attributed</title>`,
			want:    "Attributed",
		},
		{
			name:    "title spanning lines",
			content: "<title>Line\nBreak</title>",
			want:    "Line\nBreak",
		},
		{
			name:    "title entities stripped",
			content: "<title>A &amp; B</title>",
			want:    "A  B",
		},
		{
			name:    "title preferred over h1",
			content: "<title>The Title</title><h1>The Heading</h1>",
			want:    "The Title",
		},
		{
			name:    "h1 fallback",
			content: "<body><h1>Main Heading</h1><p>text</p></body>",
			want:    "Main Heading",
		},
		{
			name:    "h1 nested tags stripped",
			content: "<h1>Big <em>Deal</em></h1>",
			want:    "Big Deal",
		},
		{
			name:    "plain text under limit",
			content: "just some plain text",
			want:    "just some plain text",
		},
		{
			name:    "tags stripped before snippet",
			content: "<p>wrapped words</p>",
			want:    "wrapped words",
		},
		{
			name:    "empty content",
			content: "",
			want:    DefaultTitle,
		},
		{
			name:    "whitespace only",
			content: "   \n\t  ",
			want:    DefaultTitle,
		},
		{
			name:    "tags only",
			content: "<div><span></span></div>",
			want:    DefaultTitle,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ExtractTitle(tc.content); got != tc.want {
				t.Fatalf("ExtractTitle(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}

func TestExtractTitleTruncatesLongTitles(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 150)
	got := ExtractTitle("<title>" + long + "</title>")
	if len([]rune(got)) != maxTitleLength {
		t.Fatalf("expected title truncated to %d runes, got %d", maxTitleLength, len([]rune(got)))
	}
	if got != strings.Repeat("x", maxTitleLength) {
		t.Fatalf("unexpected truncated title: %q", got)
	}
}

func TestExtractTitleSnippetEllipsis(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 80)
	got := ExtractTitle(text)
	want := strings.Repeat("a", 50) + "..."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	exact := strings.Repeat("b", 50)
	if got := ExtractTitle(exact); got != exact {
		t.Fatalf("expected 50-rune text to pass through unchanged, got %q", got)
	}
}

func TestExtractTitleCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("你", 60)
	got := ExtractTitle(text)
	want := strings.Repeat("你", 50) + "..."
	if got != want {
		t.Fatalf("expected rune-based truncation, got %q", got)
	}
}

// Package publisher renders generated articles for display.
package publisher

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"

	"ai_news_agent/generator"
)

// Format names an output rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// Markdown renders an article as a Markdown document.
func Markdown(a generator.Article) string {
	var sb strings.Builder
	if a.Title != "" {
		sb.WriteString("# ")
		sb.WriteString(a.Title)
		sb.WriteString("\n\n")
	}
	if a.Subtitle != "" {
		sb.WriteString("_")
		sb.WriteString(a.Subtitle)
		sb.WriteString("_\n\n")
	}
	for _, s := range a.Sections {
		if s.Heading != "" {
			sb.WriteString("## ")
			sb.WriteString(s.Heading)
			sb.WriteString("\n\n")
		}
		if c := strings.TrimSpace(s.Content); c != "" {
			sb.WriteString(c)
			sb.WriteString("\n\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// HTML renders an article as an HTML fragment wrapped in <article>.
func HTML(a generator.Article) (string, error) {
	body, err := mdToHTML(Markdown(a))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("<article>\n")
	if a.SEO != "" {
		sb.WriteString(fmt.Sprintf("<meta name=\"description\" content=\"%s\">\n", html.EscapeString(a.SEO)))
	}
	sb.WriteString(body)
	sb.WriteString("</article>\n")
	return sb.String(), nil
}

// Render dispatches on format; JSON is handled by callers.
func Render(a generator.Article, f Format) (string, error) {
	switch f {
	case FormatMarkdown:
		return Markdown(a), nil
	case FormatHTML:
		return HTML(a)
	default:
		return "", errors.New("publisher: json is encoded by the caller")
	}
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

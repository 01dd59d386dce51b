package generator

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PostProcess turns the editor's raw answer into an Article. Output that
// cannot be structured degrades to a single "Draft" section holding the raw
// text instead of failing.
func PostProcess(raw, topic string, mode EditorMode) (Article, bool) {
	var (
		art Article
		ok  bool
	)
	switch mode {
	case EditorMarkdown:
		art, ok = articleFromMarkdown(raw, topic)
	default:
		art, ok = articleFromJSONText(raw)
	}
	if !ok {
		return fallbackArticle(topic, raw), false
	}
	return art, true
}

func articleFromJSONText(raw string) (Article, bool) {
	v, err := ExtractLastJSON(raw)
	if err != nil {
		return Article{}, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Article{}, false
	}
	return articleFromObject(obj), true
}

// articleFromObject maps a decoded object; absent or mistyped keys become
// empty values.
func articleFromObject(obj map[string]any) Article {
	art := Article{
		Title:    stringField(obj, "title"),
		Subtitle: stringField(obj, "subtitle"),
		Sections: []Section{},
		SEO:      stringField(obj, "seo_description"),
	}
	if art.SEO == "" {
		art.SEO = stringField(obj, "seo")
	}
	items, _ := obj["sections"].([]any)
	for _, item := range items {
		switch sec := item.(type) {
		case map[string]any:
			art.Sections = append(art.Sections, Section{
				Heading: stringField(sec, "heading"),
				Content: stringField(sec, "content"),
			})
		case string:
			art.Sections = append(art.Sections, Section{Heading: sec})
		}
	}
	return art
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

type headingSpan struct {
	level int
	text  string
	start int // offset of the heading line
	end   int // offset just past the heading line(s)
}

// articleFromMarkdown splits a Markdown article on its headings: the first
// level-1 heading is the title, the first paragraph before any section is the
// subtitle, and each deeper heading opens a section.
func articleFromMarkdown(raw, topic string) (Article, bool) {
	src := []byte(raw)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var heads []headingSpan
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		start := bytes.LastIndexByte(src[:seg.Start], '\n') + 1
		end := lineEnd(src, seg.Stop)
		if !bytes.HasPrefix(bytes.TrimLeft(src[start:], " "), []byte("#")) {
			// setext heading: skip the underline too
			end = lineEnd(src, end)
		}
		heads = append(heads, headingSpan{
			level: h.Level,
			text:  strings.TrimSpace(string(seg.Value(src))),
			start: start,
			end:   end,
		})
	}

	art := Article{Title: topic, Sections: []Section{}}
	titleEnd := 0
	for _, h := range heads {
		if h.level == 1 {
			art.Title = h.text
			titleEnd = h.end
			break
		}
	}
	for i, h := range heads {
		if h.level < 2 {
			continue
		}
		stop := len(src)
		if i+1 < len(heads) {
			stop = heads[i+1].start
		}
		art.Sections = append(art.Sections, Section{
			Heading: h.text,
			Content: strings.TrimSpace(string(src[h.end:stop])),
		})
	}
	if len(art.Sections) == 0 {
		return Article{}, false
	}
	art.Subtitle = leadParagraph(doc, src, titleEnd, firstSectionStart(heads))
	return art, true
}

// leadParagraph returns the first paragraph between from and to.
func leadParagraph(doc ast.Node, src []byte, from, to int) string {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p, ok := n.(*ast.Paragraph)
		if !ok || p.Lines().Len() == 0 {
			continue
		}
		first := p.Lines().At(0)
		if first.Start < from || first.Start >= to {
			continue
		}
		last := p.Lines().At(p.Lines().Len() - 1)
		return strings.TrimSpace(string(src[first.Start:last.Stop]))
	}
	return ""
}

func firstSectionStart(heads []headingSpan) int {
	for _, h := range heads {
		if h.level >= 2 {
			return h.start
		}
	}
	return 0
}

func lineEnd(src []byte, from int) int {
	if from >= len(src) {
		return len(src)
	}
	if i := bytes.IndexByte(src[from:], '\n'); i >= 0 {
		return from + i + 1
	}
	return len(src)
}

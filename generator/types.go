package generator

// Article is the structured result of one pipeline run.
type Article struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Sections []Section `json:"sections"`
	// SEO is optional metadata; not every editor output carries it.
	SEO string `json:"seo_description,omitempty"`
}

// Section is one headed block of an article.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// EditorMode selects what the editor stage is asked to produce.
type EditorMode string

const (
	// EditorJSON asks the editor to restructure the article into a JSON object.
	EditorJSON EditorMode = "json"
	// EditorMarkdown asks the editor to proofread and return Markdown.
	EditorMarkdown EditorMode = "markdown"
)

// ParseEditorMode maps a config value onto an EditorMode; empty means EditorJSON.
func ParseEditorMode(s string) (EditorMode, error) {
	switch EditorMode(s) {
	case "", EditorJSON:
		return EditorJSON, nil
	case EditorMarkdown:
		return EditorMarkdown, nil
	default:
		return "", &UnknownEditorModeError{Mode: s}
	}
}

// fallbackArticle wraps raw model text when it cannot be structured.
func fallbackArticle(topic, raw string) Article {
	return Article{
		Title:    topic,
		Subtitle: "",
		Sections: []Section{{Heading: "Draft", Content: raw}},
	}
}

package generator

import (
	"context"
	"encoding/json"
	"strings"
)

// MockLLM is an offline stand-in for local runs; it never calls a provider.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt, _ Options) (string, error) {
	switch prompt.Stage {
	case StagePlanner:
		return `{"title": "Sample article", "subtitle": "Generated offline", "seo": "sample offline article", "sections": ["Background", "Details"]}`, nil
	case StageWriter:
		var sb strings.Builder
		sb.WriteString("# Sample article\n\n")
		sb.WriteString("Generated offline\n\n")
		sb.WriteString("## Background\n\n")
		sb.WriteString("Content generated from the prompt:\n\n")
		sb.WriteString("```\n")
		sb.WriteString(prompt.User)
		sb.WriteString("\n```\n\n")
		sb.WriteString("## Details\n\n")
		sb.WriteString("No model was called.\n")
		return sb.String(), nil
	default:
		if !strings.Contains(prompt.System, "JSON") {
			return "# Sample article\n\nGenerated offline\n\n## Background\n\nNo model was called.\n", nil
		}
		out, err := json.Marshal(Article{
			Title:    "Sample article",
			Subtitle: "Generated offline",
			Sections: []Section{
				{Heading: "Background", Content: "No model was called."},
			},
		})
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

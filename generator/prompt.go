package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message set sent to the model for one stage.
type Prompt struct {
	Stage  string
	System string
	User   string
}

// Stage names.
const (
	StagePlanner = "planner"
	StageWriter  = "writer"
	StageEditor  = "editor"
)

const topicPlaceholder = "{topic}"

// Stage is a read-only template for one model call in the pipeline.
type Stage struct {
	Name           string
	Role           string
	Backstory      string
	Goal           string
	Description    string
	ExpectedOutput string
	// JSONOutput marks stages whose answer is expected to be JSON.
	JSONOutput bool
}

const editorJSONSchema = "{\n" +
	"  \"title\": string,\n" +
	"  \"subtitle\": string,\n" +
	"  \"sections\": [\n" +
	"    {\"heading\": string, \"content\": string}\n" +
	"  ]\n" +
	"}\n"

func plannerStage() Stage {
	return Stage{
		Name:           StagePlanner,
		Role:           "Content Planner",
		Backstory:      "You create structured content plans for news articles.",
		Goal:           "Plan a detailed news article about {topic}. Output as JSON with: title, subtitle, seo, and sections (list of strings).",
		Description:    "Plan the article for {topic} with JSON (title, subtitle, seo, sections).",
		ExpectedOutput: "JSON with keys: title, subtitle, seo, sections (list of section titles).",
		JSONOutput:     true,
	}
}

func writerStage() Stage {
	return Stage{
		Name:           StageWriter,
		Role:           "Content Writer",
		Backstory:      "You are a journalist writing high-quality articles.",
		Goal:           "Write a news article about {topic} in Markdown based on the content plan. Include title, subtitle, seo, and sections.",
		Description:    "Write the full article in Markdown from the plan.",
		ExpectedOutput: "Markdown string with title, subtitle, seo, and sections.",
	}
}

func editorStage(mode EditorMode) Stage {
	if mode == EditorMarkdown {
		return Stage{
			Name:      StageEditor,
			Role:      "Editor",
			Backstory: "You are an editor who proofreads news articles for clarity, grammar and structure.",
			Goal: "Proofread the Markdown article about {topic}. Keep a single level-1 title, " +
				"a one-paragraph subtitle under it and level-2 headings for every section.",
			Description:    "Proofread and polish the Markdown article.",
			ExpectedOutput: "The final article in Markdown only (no explanations).",
		}
	}
	return Stage{
		Name:      StageEditor,
		Role:      "Editor",
		Backstory: "You are an editor who ensures the final article is clean, structured JSON.",
		Goal: "Convert the Markdown article into a JSON object ONLY. Use this schema:\n" +
			editorJSONSchema +
			"Return nothing except valid JSON. Do not include markdown, explanations, or commentary.",
		Description:    "Convert the Markdown article into structured JSON (title, subtitle, sections).",
		ExpectedOutput: "Valid JSON only (no markdown, no explanations).",
		JSONOutput:     true,
	}
}

// DefaultStages returns the planner, writer and editor templates in run order.
func DefaultStages(mode EditorMode) []Stage {
	return []Stage{plannerStage(), writerStage(), editorStage(mode)}
}

// BuildStagePrompt renders a stage template for topic. context is the
// previous stage's output and is omitted when empty.
func BuildStagePrompt(st Stage, topic, context string) Prompt {
	var sys strings.Builder
	sys.WriteString(fmt.Sprintf("You are %s. %s\n", st.Role, st.Backstory))
	sys.WriteString(fmt.Sprintf("Your personal goal is: %s", interpolate(st.Goal, topic)))

	var user strings.Builder
	user.WriteString(fmt.Sprintf("Current Task: %s\n\n", interpolate(st.Description, topic)))
	user.WriteString(fmt.Sprintf("This is the expected criteria for your final answer: %s\n", interpolate(st.ExpectedOutput, topic)))
	user.WriteString("you MUST return the actual complete content as the final answer, not a summary.\n")
	if strings.TrimSpace(context) != "" {
		user.WriteString("\nThis is the context you're working with:\n")
		user.WriteString(context)
		user.WriteString("\n")
	}
	user.WriteString("\nBegin!")

	return Prompt{
		Stage:  st.Name,
		System: sys.String(),
		User:   user.String(),
	}
}

func interpolate(tmpl, topic string) string {
	return strings.ReplaceAll(tmpl, topicPlaceholder, topic)
}

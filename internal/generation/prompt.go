package generation

import (
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/llm"
)

const systemPrompt = `You are an expert assistant that writes high-quality multiple-choice questions for professional exams.
For every question:
- write a clear, unambiguous stem;
- give exactly four answer options, one of them correct;
- make the three distractors plausible and of similar length and grammar;
- test comprehension and analysis rather than recall of trivia.`

func userPrompt(p formats.Profile, topic formats.Topic, n int, withSource bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d multiple-choice questions for the %s exam, topic %q.\n", n, p.Title, topic.Title)
	if withSource {
		b.WriteString("Base the questions only on the exam content in the attached PDF.\n")
	}
	b.WriteString("Return an object with a \"questions\" array. Each item has question, answer_1, answer_2, answer_3, answer_4 ")
	b.WriteString("and solution, the 1-based index of the correct answer.\n")
	return b.String()
}

var questionSchema = &llm.Schema{
	Name:        "qbank-questions",
	Description: "A list of four-option multiple-choice questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string", "minLength": 1},
						"answer_1": map[string]any{"type": "string", "minLength": 1},
						"answer_2": map[string]any{"type": "string", "minLength": 1},
						"answer_3": map[string]any{"type": "string", "minLength": 1},
						"answer_4": map[string]any{"type": "string", "minLength": 1},
						"solution": map[string]any{"type": "integer", "minimum": 1, "maximum": 4},
					},
					"required":             []any{"question", "answer_1", "answer_2", "answer_3", "answer_4", "solution"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

type generated struct {
	Questions []struct {
		Question string `json:"question"`
		Answer1  string `json:"answer_1"`
		Answer2  string `json:"answer_2"`
		Answer3  string `json:"answer_3"`
		Answer4  string `json:"answer_4"`
		Solution int    `json:"solution"`
	} `json:"questions"`
}

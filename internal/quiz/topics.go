package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"studyquiz/internal/llm"
)

const (
	topicContent     = 10000
	maxHeadings      = 20
	maxHeadingTopics = 10
)

// DefaultTopics is returned when neither the service nor heading detection
// finds any topic.
var DefaultTopics = []string{"General Overview", "Key Concepts", "Summary"}

var headingPattern = regexp.MustCompile(`\n([A-Z][A-Za-z \t]+)(?:\n|:)`)

// ExtractTopics asks the service for the main topics of text. On failure it
// falls back to heading detection and then to DefaultTopics.
func (g *Generator) ExtractTopics(ctx context.Context, text string) []string {
	raw, err := g.llm.Generate(ctx, llm.Request{
		Prompt: topicsPrompt(truncateRunes(text, topicContent)),
		JSON:   true,
	})
	if err != nil {
		g.log.Warn("topic extraction failed, using headings", "error", err)
		return HeadingTopics(text)
	}
	topics, err := parseTopics(raw)
	if err != nil || len(topics) == 0 {
		g.log.Warn("unusable topic payload, using headings", "error", err)
		return HeadingTopics(text)
	}
	return topics
}

func parseTopics(raw string) ([]string, error) {
	text := stripCodeFence(raw)
	var data interface{}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	switch v := data.(type) {
	case []interface{}:
		return stringList(v), nil
	case map[string]interface{}:
		keys := objectKeys(text)
		if list, ok := firstList(v, keys); ok {
			return stringList(list), nil
		}
		return keys, nil
	}
	return nil, fmt.Errorf("unexpected payload type %T", data)
}

func stringList(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		s := strings.TrimSpace(fmt.Sprint(it))
		if it == nil || s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// HeadingTopics collects capitalized heading lines from the first twenty
// matches, de-duplicated, at most ten.
func HeadingTopics(text string) []string {
	matches := headingPattern.FindAllStringSubmatch(text, maxHeadings)
	seen := make(map[string]struct{}, len(matches))
	var topics []string
	for _, m := range matches {
		h := strings.TrimSpace(m[1])
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		topics = append(topics, h)
		if len(topics) == maxHeadingTopics {
			break
		}
	}
	if len(topics) == 0 {
		return append([]string(nil), DefaultTopics...)
	}
	return topics
}

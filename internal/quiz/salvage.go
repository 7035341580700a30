package quiz

import (
	"encoding/json"
	"strings"

	"studyquiz/internal/models"
)

// salvageQuestions recovers the complete question objects of a truncated
// payload. Only objects nested directly inside the first array are considered.
func salvageQuestions(raw string) []models.Question {
	text := stripCodeFence(raw)
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return nil
	}

	var (
		questions []models.Question
		depth     int
		objStart  = -1
		inString  bool
		escaped   bool
	)
	for i := start + 1; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && objStart >= 0 {
				var m map[string]interface{}
				if err := json.Unmarshal([]byte(text[objStart:i+1]), &m); err == nil {
					if q, ok := toQuestion(m); ok {
						questions = append(questions, q)
					}
				}
				objStart = -1
			}
		case ']':
			if depth == 0 {
				return questions
			}
		}
	}
	return questions
}

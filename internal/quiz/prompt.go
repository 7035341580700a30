package quiz

import "fmt"

const questionTemplate = `You are an expert educational assessment creator. Generate exactly %d high-quality multiple choice questions based on the provided content.

Requirements:
1. Each question must have 4 options (A, B, C, D).
2. Cover different topics/sections.
3. Mix difficulty levels (easy, medium, hard).
4. Output MUST be valid JSON only, no markdown formatting.
5. If a top-level array is not allowed, wrap it as {"questions": [...]}.

JSON Structure:
[
  {
    "question": "Question text?",
    "options": {
      "A": "Option 1",
      "B": "Option 2",
      "C": "Option 3",
      "D": "Option 4"
    },
    "correct_answer": "B",
    "topic": "Topic Name",
    "difficulty": "medium",
    "explanation": "Explanation here"
  }
]

Content:
%s
`

const topicsTemplate = `Analyze this educational content and extract the main topics.
Return ONLY a JSON list of strings. If a top-level array is not allowed, wrap it as {"topics": [...]}.

Example: ["Topic A", "Topic B", "Topic C"]

Content:
%s`

func questionPrompt(n int, content string) string {
	return fmt.Sprintf(questionTemplate, n, content)
}

func topicsPrompt(content string) string {
	return fmt.Sprintf(topicsTemplate, content)
}

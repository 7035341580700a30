// Package tutor writes remedial mini-lessons for weak topics, grounded in the
// retrieved content of the studied document.
package tutor

import (
	"context"
	"fmt"
	"strings"

	"studyquiz/internal/apperr"
	"studyquiz/internal/llm"
	"studyquiz/internal/logger"
	"studyquiz/internal/models"

	"github.com/google/uuid"
)

const (
	contextChunks = 4
	maxContext    = 10000

	NoContext = "No specific context found in document. Using general knowledge."
)

const lessonTemplate = `You are an expert personal tutor. The student struggled with the topic: "%s".

Using the source material below, create a short, clear, and engaging mini-lesson to help them understand.

Structure the lesson as follows:
1. **Simple Explanation**: Explain the concept like they are 15 years old.
2. **Key Points**: Bullet points of the most important facts.
3. **Common Pitfalls**: What students usually get wrong about this.
4. **Real World Analogy**: A simple analogy to help remember.

Source Material:
%s
`

type Documents interface {
	Get(id uuid.UUID) (models.Document, error)
}

type Retriever interface {
	QueryDocument(documentID uuid.UUID, text string, topK int) []models.RetrievedChunk
}

type Tutor struct {
	docs  Documents
	index Retriever
	llm   llm.Client
	log   *logger.Logger
}

func New(docs Documents, index Retriever, client llm.Client, log *logger.Logger) *Tutor {
	return &Tutor{
		docs:  docs,
		index: index,
		llm:   client,
		log:   logger.OrNop(log).With("component", "tutor.Tutor"),
	}
}

// Lesson returns a lesson on topic for the given document. Unknown documents
// and blank topics are errors; a failing service yields an error message as
// the lesson text.
func (t *Tutor) Lesson(ctx context.Context, documentID uuid.UUID, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", apperr.Invalid("topic is required")
	}
	if _, err := t.docs.Get(documentID); err != nil {
		return "", err
	}

	lesson, err := t.llm.Generate(ctx, llm.Request{Prompt: lessonPrompt(topic, t.sourceMaterial(documentID, topic))})
	if err != nil {
		t.log.Warn("lesson generation failed", "document_id", documentID, "topic", topic, "error", err)
		return fmt.Sprintf("Error generating lesson: %v", err), nil
	}
	return lesson, nil
}

func (t *Tutor) sourceMaterial(documentID uuid.UUID, topic string) string {
	chunks := t.index.QueryDocument(documentID, topic, contextChunks)
	if len(chunks) == 0 {
		return NoContext
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	joined := strings.Join(texts, "\n\n")
	if r := []rune(joined); len(r) > maxContext {
		joined = string(r[:maxContext])
	}
	return joined
}

func lessonPrompt(topic, source string) string {
	return fmt.Sprintf(lessonTemplate, topic, source)
}

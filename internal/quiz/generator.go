// Package quiz turns document content into multiple-choice questions using
// the generative service, degrading to placeholder content when it fails.
package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"studyquiz/internal/apperr"
	"studyquiz/internal/llm"
	"studyquiz/internal/logger"
	"studyquiz/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultNumQuestions = 10
	// MaxNumQuestions bounds a single request; larger counts are clamped.
	MaxNumQuestions = 50

	// Documents with more chunks than sampleChunks are sampled instead of
	// truncated.
	sampleChunks = 15
	maxContent   = 30000
)

var optionLabels = []string{"A", "B", "C", "D"}

// Generator builds quizzes for documents.
type Generator struct {
	llm llm.Client
	log *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Generator)

// WithRand fixes the source used to sample chunks.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

func NewGenerator(client llm.Client, log *logger.Logger, opts ...Option) *Generator {
	g := &Generator{
		llm: client,
		log: logger.OrNop(log).With("component", "quiz.Generator"),
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns up to numQuestions questions for doc. It never fails: any
// service or parse error yields numQuestions placeholder questions instead.
func (g *Generator) Generate(ctx context.Context, doc models.Document, numQuestions int) []models.Question {
	if numQuestions <= 0 {
		numQuestions = DefaultNumQuestions
	}
	if numQuestions > MaxNumQuestions {
		numQuestions = MaxNumQuestions
	}

	raw, err := g.llm.Generate(ctx, llm.Request{
		Prompt: questionPrompt(numQuestions, g.selectContent(doc)),
		JSON:   true,
	})
	if err != nil {
		g.log.Warn("question generation failed, using placeholders",
			"document_id", doc.ID, "error", apperr.External(err, "generative service"))
		return Fallback(numQuestions)
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		questions = salvageQuestions(raw)
		if len(questions) == 0 {
			g.log.Warn("unparseable question payload, using placeholders",
				"document_id", doc.ID, "error", err, "raw_len", len(raw))
			return Fallback(numQuestions)
		}
		g.log.Warn("recovered questions from truncated payload",
			"document_id", doc.ID, "error", err, "recovered", len(questions))
	}
	if len(questions) == 0 {
		g.log.Warn("no usable questions in payload, using placeholders", "document_id", doc.ID)
		return Fallback(numQuestions)
	}
	if len(questions) > numQuestions {
		questions = questions[:numQuestions]
	}
	g.log.Info("questions generated", "document_id", doc.ID, "requested", numQuestions, "returned", len(questions))
	return questions
}

// selectContent samples chunks from large documents and truncates small ones.
func (g *Generator) selectContent(doc models.Document) string {
	if len(doc.Chunks) > sampleChunks {
		g.mu.Lock()
		perm := g.rng.Perm(len(doc.Chunks))[:sampleChunks]
		g.mu.Unlock()

		picked := make([]string, len(perm))
		for i, idx := range perm {
			picked[i] = doc.Chunks[idx]
		}
		return strings.Join(picked, "\n\n")
	}
	return truncateRunes(doc.FullText, maxContent)
}

// Fallback returns n placeholder questions flagged with topic "System".
func Fallback(n int) []models.Question {
	out := make([]models.Question, n)
	for i := range out {
		out[i] = models.Question{
			ID:            uuid.New(),
			Question:      fmt.Sprintf("Error generating question %d. Please try again.", i+1),
			Options:       map[string]string{"A": "Error", "B": "Error", "C": "Error", "D": "Error"},
			CorrectAnswer: "A",
			Topic:         "System",
			Difficulty:    models.DifficultyEasy,
			Explanation:   "System error occurred.",
		}
	}
	return out
}

// parseQuestions accepts a list of questions, a wrapper object holding the
// list, or a single question object. Candidates without a question or options
// are dropped.
func parseQuestions(raw string) ([]models.Question, error) {
	text := stripCodeFence(raw)
	var data interface{}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	var items []interface{}
	switch v := data.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		if list, ok := firstList(v, objectKeys(text)); ok {
			items = list
		} else {
			items = []interface{}{v}
		}
	default:
		return nil, fmt.Errorf("unexpected payload type %T", data)
	}

	questions := make([]models.Question, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if q, ok := toQuestion(m); ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func toQuestion(m map[string]interface{}) (models.Question, bool) {
	text := stringField(m, "question")
	if text == "" {
		return models.Question{}, false
	}
	options, ok := toOptions(m["options"])
	if !ok {
		return models.Question{}, false
	}

	q := models.Question{
		ID:            uuid.New(),
		Question:      text,
		Options:       options,
		CorrectAnswer: normalizeAnswer(stringField(m, "correct_answer")),
		Topic:         stringField(m, "topic"),
		Difficulty:    parseDifficulty(stringField(m, "difficulty")),
		Explanation:   stringField(m, "explanation"),
	}
	if q.Topic == "" {
		q.Topic = "General"
	}
	if q.Explanation == "" {
		q.Explanation = "No explanation available"
	}
	return q, true
}

// toOptions accepts {"A": ..., "B": ...} or a plain list mapped onto A-D.
func toOptions(v interface{}) (map[string]string, bool) {
	out := make(map[string]string, len(optionLabels))
	switch opts := v.(type) {
	case map[string]interface{}:
		for k, val := range opts {
			out[strings.ToUpper(strings.TrimSpace(k))] = fmt.Sprint(val)
		}
	case []interface{}:
		for i, val := range opts {
			if i >= len(optionLabels) {
				break
			}
			out[optionLabels[i]] = fmt.Sprint(val)
		}
	default:
		return nil, false
	}
	return out, len(out) > 0
}

func stringField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func normalizeAnswer(s string) string {
	if len(s) == 1 {
		return strings.ToUpper(s)
	}
	return s
}

func parseDifficulty(s string) models.Difficulty {
	switch d := models.Difficulty(strings.ToLower(s)); d {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return d
	}
	return models.DifficultyMedium
}

// stripCodeFence removes a surrounding ```json fence some models add even in
// JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an ingested PDF or transcript. Immutable after ingestion.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	FullText    string    `json:"full_text"`
	Chunks      []string  `json:"chunks"`
	ChunkCount  int       `json:"chunk_count"`
	ChunkPolicy string    `json:"chunk_policy"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChunkRecord is one indexed chunk, identified by "<document_id>_<index>".
type ChunkRecord struct {
	ChunkID    string    `json:"chunk_id"`
	DocumentID uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
}

// Difficulty of a generated question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a single multiple-choice question with options labelled A-D.
type Question struct {
	ID            uuid.UUID         `json:"id"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Topic         string            `json:"topic"`
	Difficulty    Difficulty        `json:"difficulty"`
	Explanation   string            `json:"explanation"`
}

// Answer is a submitted choice for one question.
type Answer struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

// TestSession holds a generated quiz and, once submitted, its grading.
type TestSession struct {
	TestID     uuid.UUID  `json:"test_id"`
	DocumentID uuid.UUID  `json:"document_id"`
	Questions  []Question `json:"questions"`
	CreatedAt  time.Time  `json:"created_at"`
	Submitted  bool       `json:"submitted"`
	Answers    []Answer   `json:"answers,omitempty"`
	Results    *Analysis  `json:"results,omitempty"`
}

// Performance levels and recommendation priorities.
const (
	LevelGood             = "Good"
	LevelModerate         = "Moderate"
	LevelNeedsImprovement = "Needs Improvement"

	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// QuestionDetail is the per-question entry inside a topic breakdown.
type QuestionDetail struct {
	Question      string `json:"question"`
	Correct       bool   `json:"correct"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
}

type TopicAnalysis struct {
	Correct         int              `json:"correct"`
	Total           int              `json:"total"`
	Percentage      float64          `json:"percentage"`
	Level           string           `json:"level"`
	QuestionsDetail []QuestionDetail `json:"questions_detail"`
}

type DifficultyStats struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

type QuestionResult struct {
	QuestionID    uuid.UUID  `json:"question_id"`
	Question      string     `json:"question"`
	Topic         string     `json:"topic"`
	Difficulty    Difficulty `json:"difficulty"`
	UserAnswer    string     `json:"user_answer"`
	CorrectAnswer string     `json:"correct_answer"`
	IsCorrect     bool       `json:"is_correct"`
	Explanation   string     `json:"explanation"`
}

type WeakArea struct {
	Topic      string  `json:"topic"`
	Percentage float64 `json:"percentage"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
}

type Recommendation struct {
	Topic    string `json:"topic"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// Analysis is the read-only grading result of a submitted TestSession.
type Analysis struct {
	TestID              uuid.UUID                      `json:"test_id"`
	Score               int                            `json:"score"`
	MaxScore            int                            `json:"max_score"`
	Percentage          float64                        `json:"percentage"`
	TopicOrder          []string                       `json:"topic_order"`
	TopicAnalysis       map[string]TopicAnalysis       `json:"topic_analysis"`
	DifficultyBreakdown map[Difficulty]DifficultyStats `json:"difficulty_breakdown"`
	DetailedResults     []QuestionResult               `json:"detailed_results"`
	WeakAreas           []WeakArea                     `json:"weak_areas"`
	Recommendations     []Recommendation               `json:"recommendations"`
	SubmittedAt         time.Time                      `json:"submitted_at"`
}

// PerformanceRecord is appended to the performance log on every grading.
type PerformanceRecord struct {
	TestID     uuid.UUID `json:"test_id"`
	Timestamp  time.Time `json:"timestamp"`
	Score      int       `json:"score"`
	MaxScore   int       `json:"max_score"`
	Percentage float64   `json:"percentage"`
	Topics     []string  `json:"topics"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Trends summarises the performance log across sessions.
type Trends struct {
	AverageScore float64      `json:"average_score"`
	TestsTaken   int          `json:"tests_taken"`
	Improvement  float64      `json:"improvement"`
	CommonTopics []TopicCount `json:"common_topics"`
}

// RetrievedChunk is one ranked hit from the retrieval index.
type RetrievedChunk struct {
	Text       string    `json:"text"`
	Similarity float64   `json:"similarity"`
	DocumentID uuid.UUID `json:"document_id"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

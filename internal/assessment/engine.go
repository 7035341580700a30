// Package assessment runs test sessions: it stores generated quizzes, grades
// submissions and derives per-topic analytics and cross-session trends.
package assessment

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"studyquiz/internal/apperr"
	"studyquiz/internal/logger"
	"studyquiz/internal/models"
	"studyquiz/internal/store"

	"github.com/google/uuid"
)

// ResubmitPolicy decides what grading an already submitted session does.
type ResubmitPolicy string

const (
	// ResubmitOverwrite re-grades, replaces the stored analysis and appends
	// another performance record.
	ResubmitOverwrite ResubmitPolicy = "overwrite"
	// ResubmitReject fails with a conflict.
	ResubmitReject ResubmitPolicy = "reject"
)

func ParseResubmitPolicy(s string) (ResubmitPolicy, error) {
	switch ResubmitPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ResubmitOverwrite:
		return ResubmitOverwrite, nil
	case ResubmitReject:
		return ResubmitReject, nil
	}
	return "", fmt.Errorf("unknown resubmit policy %q", s)
}

const (
	goodThreshold     = 80.0
	moderateThreshold = 50.0
	commonTopicsLimit = 5
	improvementWindow = 3
)

type Engine struct {
	sessions *store.Sessions
	perf     *store.PerformanceLog
	policy   ResubmitPolicy
	log      *logger.Logger
	now      func() time.Time

	// gradeMu serialises read-grade-write of a session.
	gradeMu sync.Mutex
}

func NewEngine(sessions *store.Sessions, perf *store.PerformanceLog, policy ResubmitPolicy, log *logger.Logger) *Engine {
	if policy == "" {
		policy = ResubmitOverwrite
	}
	return &Engine{
		sessions: sessions,
		perf:     perf,
		policy:   policy,
		log:      logger.OrNop(log).With("component", "assessment.Engine"),
		now:      time.Now,
	}
}

// Create stores a new unsubmitted session for questions.
func (e *Engine) Create(documentID uuid.UUID, questions []models.Question) (uuid.UUID, error) {
	if len(questions) == 0 {
		return uuid.Nil, apperr.Invalid("a test needs at least one question")
	}
	session := models.TestSession{
		TestID:     uuid.New(),
		DocumentID: documentID,
		Questions:  append([]models.Question(nil), questions...),
		CreatedAt:  e.now().UTC(),
	}
	if err := e.sessions.Create(session); err != nil {
		return uuid.Nil, err
	}
	e.log.Info("test created", "test_id", session.TestID, "document_id", documentID, "questions", len(questions))
	return session.TestID, nil
}

// Session returns a stored session.
func (e *Engine) Session(testID uuid.UUID) (models.TestSession, error) {
	session, err := e.sessions.Get(testID)
	if err != nil {
		return models.TestSession{}, err
	}
	session.Results = cloneAnalysis(session.Results)
	return session, nil
}

// Grade scores answers against the session's questions, stores the analysis
// on the session and appends a performance record.
func (e *Engine) Grade(testID uuid.UUID, answers []models.Answer) (*models.Analysis, error) {
	e.gradeMu.Lock()
	defer e.gradeMu.Unlock()

	session, err := e.sessions.Get(testID)
	if err != nil {
		return nil, err
	}
	if session.Submitted {
		if e.policy == ResubmitReject {
			return nil, apperr.Conflict("test %s already submitted", testID)
		}
		e.log.Warn("re-grading submitted test", "test_id", testID)
	}

	now := e.now().UTC()
	analysis := grade(session.TestID, session.Questions, answers)
	analysis.SubmittedAt = now

	session.Submitted = true
	session.Answers = append([]models.Answer(nil), answers...)
	session.Results = analysis
	if err := e.sessions.Update(session); err != nil {
		return nil, err
	}

	e.perf.Append(models.PerformanceRecord{
		TestID:     testID,
		Timestamp:  now,
		Score:      analysis.Score,
		MaxScore:   analysis.MaxScore,
		Percentage: 100 * float64(analysis.Score) / float64(analysis.MaxScore),
		Topics:     analysis.TopicOrder,
	})
	e.log.Info("test graded", "test_id", testID, "score", analysis.Score, "max_score", analysis.MaxScore)
	return cloneAnalysis(analysis), nil
}

// Analysis returns the stored analysis of a submitted session. Unknown and
// unsubmitted sessions are not found.
func (e *Engine) Analysis(testID uuid.UUID) (*models.Analysis, error) {
	session, err := e.sessions.Get(testID)
	if err != nil {
		return nil, err
	}
	if !session.Submitted || session.Results == nil {
		return nil, apperr.NotFound("analysis for test %s not found", testID)
	}
	return cloneAnalysis(session.Results), nil
}

// cloneAnalysis deep-copies a so callers never share the stored result.
func cloneAnalysis(a *models.Analysis) *models.Analysis {
	if a == nil {
		return nil
	}
	out := *a
	out.TopicOrder = slices.Clone(a.TopicOrder)
	out.DetailedResults = slices.Clone(a.DetailedResults)
	out.WeakAreas = slices.Clone(a.WeakAreas)
	out.Recommendations = slices.Clone(a.Recommendations)
	out.DifficultyBreakdown = maps.Clone(a.DifficultyBreakdown)
	out.TopicAnalysis = maps.Clone(a.TopicAnalysis)
	for k, v := range out.TopicAnalysis {
		v.QuestionsDetail = slices.Clone(v.QuestionsDetail)
		out.TopicAnalysis[k] = v
	}
	return &out
}

type tally struct {
	correct, total int
	details        []models.QuestionDetail
}

func grade(testID uuid.UUID, questions []models.Question, answers []models.Answer) *models.Analysis {
	submitted := make(map[string]string, len(answers))
	for _, a := range answers {
		submitted[a.QuestionID] = a.SelectedOption
	}

	var (
		score      int
		topicOrder []string
		topics     = make(map[string]*tally)
		byLevel    = make(map[models.Difficulty]models.DifficultyStats)
		results    = make([]models.QuestionResult, 0, len(questions))
	)
	for _, q := range questions {
		topic := q.Topic
		if topic == "" {
			topic = "General"
		}
		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = models.DifficultyMedium
		}
		explanation := q.Explanation
		if explanation == "" {
			explanation = "No explanation available"
		}

		userAnswer, answered := submitted[q.ID.String()]
		correct := answered && userAnswer == q.CorrectAnswer

		t, ok := topics[topic]
		if !ok {
			t = &tally{}
			topics[topic] = t
			topicOrder = append(topicOrder, topic)
		}
		d := byLevel[difficulty]
		if correct {
			score++
			t.correct++
			d.Correct++
		}
		t.total++
		d.Total++
		byLevel[difficulty] = d
		t.details = append(t.details, models.QuestionDetail{
			Question:      q.Question,
			Correct:       correct,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
		})

		results = append(results, models.QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Question,
			Topic:         topic,
			Difficulty:    difficulty,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			Explanation:   explanation,
		})
	}

	analysis := make(map[string]models.TopicAnalysis, len(topics))
	for _, name := range topicOrder {
		t := topics[name]
		pct := 100 * float64(t.correct) / float64(t.total)
		analysis[name] = models.TopicAnalysis{
			Correct:         t.correct,
			Total:           t.total,
			Percentage:      round2(pct),
			Level:           Level(pct),
			QuestionsDetail: t.details,
		}
	}

	return &models.Analysis{
		TestID:              testID,
		Score:               score,
		MaxScore:            len(questions),
		Percentage:          round2(100 * float64(score) / float64(len(questions))),
		TopicOrder:          topicOrder,
		TopicAnalysis:       analysis,
		DifficultyBreakdown: byLevel,
		DetailedResults:     results,
		WeakAreas:           weakAreas(topicOrder, analysis),
		Recommendations:     recommendations(topicOrder, analysis),
	}
}

// Level classifies a percentage.
func Level(pct float64) string {
	switch {
	case pct >= goodThreshold:
		return models.LevelGood
	case pct >= moderateThreshold:
		return models.LevelModerate
	}
	return models.LevelNeedsImprovement
}

func weakAreas(order []string, analysis map[string]models.TopicAnalysis) []models.WeakArea {
	weak := []models.WeakArea{}
	for _, name := range order {
		a := analysis[name]
		if a.Level != models.LevelNeedsImprovement {
			continue
		}
		weak = append(weak, models.WeakArea{
			Topic:      name,
			Percentage: a.Percentage,
			Correct:    a.Correct,
			Total:      a.Total,
		})
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Percentage < weak[j].Percentage })
	return weak
}

var priorityRank = map[string]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

func recommendations(order []string, analysis map[string]models.TopicAnalysis) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(order))
	for _, name := range order {
		a := analysis[name]
		rec := models.Recommendation{Topic: name}
		switch a.Level {
		case models.LevelNeedsImprovement:
			rec.Priority = models.PriorityHigh
			rec.Message = fmt.Sprintf("Focus on %s. Your current score is %.1f%%. Review fundamental concepts and practice more questions on this topic.", name, a.Percentage)
		case models.LevelModerate:
			rec.Priority = models.PriorityMedium
			rec.Message = fmt.Sprintf("Strengthen your understanding of %s. You're at %.1f%%. Review specific areas where you made mistakes.", name, a.Percentage)
		default:
			rec.Priority = models.PriorityLow
			rec.Message = fmt.Sprintf("Great job on %s! You scored %.1f%%. Continue practicing to maintain proficiency.", name, a.Percentage)
		}
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

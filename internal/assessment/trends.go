package assessment

import (
	"sort"

	"studyquiz/internal/models"
)

// Trends summarises the performance log. ok is false when nothing has been
// graded yet.
func (e *Engine) Trends() (trends *models.Trends, ok bool) {
	records := e.perf.All()
	if len(records) == 0 {
		return nil, false
	}
	return computeTrends(records), true
}

func computeTrends(records []models.PerformanceRecord) *models.Trends {
	pcts := make([]float64, len(records))
	for i, r := range records {
		pcts[i] = r.Percentage
	}
	return &models.Trends{
		AverageScore: mean(pcts),
		TestsTaken:   len(records),
		Improvement:  improvement(pcts),
		CommonTopics: commonTopics(records),
	}
}

// improvement is the mean of the latest records minus the mean of the
// earliest ones. The windows overlap when there are fewer than six records.
func improvement(pcts []float64) float64 {
	if len(pcts) < 2 {
		return 0
	}
	w := improvementWindow
	if len(pcts) < w {
		w = len(pcts)
	}
	return round2(mean(pcts[len(pcts)-w:]) - mean(pcts[:w]))
}

func commonTopics(records []models.PerformanceRecord) []models.TopicCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		for _, t := range r.Topics {
			if _, ok := counts[t]; !ok {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	out := make([]models.TopicCount, len(order))
	for i, t := range order {
		out[i] = models.TopicCount{Topic: t, Count: counts[t]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > commonTopicsLimit {
		out = out[:commonTopicsLimit]
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

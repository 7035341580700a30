// Package retrieval keeps a TF-IDF vector space over every ingested chunk and
// answers cosine-similarity queries against it.
package retrieval

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"studyquiz/internal/logger"
	"studyquiz/internal/models"

	"github.com/google/uuid"
)

const (
	// DefaultMaxFeatures caps the vocabulary at the most frequent terms.
	DefaultMaxFeatures = 500
	DefaultTopK        = 5
)

type sparseVector map[int]float64

// Index owns the shared vector space. The space is rebuilt from scratch on
// every Ingest; row i of the space always belongs to records[i].
type Index struct {
	mu  sync.RWMutex
	log *logger.Logger

	maxFeatures  int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}

	records  []models.ChunkRecord
	position map[string]int

	vocabulary map[string]int
	idf        []float64
	rows       []sparseVector
}

// NewIndex creates an empty index. maxFeatures <= 0 selects DefaultMaxFeatures.
func NewIndex(maxFeatures int, log *logger.Logger) *Index {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Index{
		log:          logger.OrNop(log).With("component", "retrieval.Index"),
		maxFeatures:  maxFeatures,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]{2,}`),
		stopwords:    defaultStopwords(),
		position:     make(map[string]int),
	}
}

// ChunkID is the identifier of the index-th chunk of a document.
func ChunkID(documentID uuid.UUID, index int) string {
	return fmt.Sprintf("%s_%d", documentID, index)
}

// Ingest records the chunks of a document and rebuilds the vector space over
// all chunks ever ingested.
func (ix *Index) Ingest(documentID uuid.UUID, chunks []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i, text := range chunks {
		rec := models.ChunkRecord{
			ChunkID:    ChunkID(documentID, i),
			DocumentID: documentID,
			ChunkIndex: i,
			Text:       text,
		}
		if pos, ok := ix.position[rec.ChunkID]; ok {
			ix.records[pos] = rec
			continue
		}
		ix.position[rec.ChunkID] = len(ix.records)
		ix.records = append(ix.records, rec)
	}
	ix.rebuild()
}

// Query ranks every chunk by cosine similarity to text and returns the best
// topK. An empty index yields an empty result, never an error.
func (ix *Index) Query(text string, topK int) []models.RetrievedChunk {
	return ix.query(text, topK, func(models.ChunkRecord) bool { return true })
}

// QueryDocument is Query restricted to the chunks of one document.
func (ix *Index) QueryDocument(documentID uuid.UUID, text string, topK int) []models.RetrievedChunk {
	return ix.query(text, topK, func(r models.ChunkRecord) bool { return r.DocumentID == documentID })
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.records)
}

// VocabularySize returns the number of terms in the current vocabulary.
func (ix *Index) VocabularySize() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vocabulary)
}

func (ix *Index) query(text string, topK int, keep func(models.ChunkRecord) bool) []models.RetrievedChunk {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.records) == 0 || len(ix.rows) != len(ix.records) {
		return []models.RetrievedChunk{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	qv := ix.vectorize(text)
	type scored struct {
		row int
		sim float64
	}
	candidates := make([]scored, 0, len(ix.records))
	for i, rec := range ix.records {
		if !keep(rec) {
			continue
		}
		candidates = append(candidates, scored{row: i, sim: cosine(qv, ix.rows[i])})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].sim > candidates[b].sim
	})
	if topK > len(candidates) {
		topK = len(candidates)
	}

	out := make([]models.RetrievedChunk, 0, topK)
	for _, c := range candidates[:topK] {
		rec := ix.records[c.row]
		out = append(out, models.RetrievedChunk{
			Text:       rec.Text,
			Similarity: c.sim,
			DocumentID: rec.DocumentID,
		})
	}
	return out
}

// rebuild recomputes vocabulary, IDF weights and every row. Caller holds mu.
func (ix *Index) rebuild() {
	ix.vocabulary, ix.idf, ix.rows = nil, nil, nil
	if len(ix.records) == 0 {
		return
	}

	docs := make([][]string, len(ix.records))
	counts := make(map[string]int)
	df := make(map[string]int)
	for i, rec := range ix.records {
		tokens := ix.tokenize(rec.Text)
		docs[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(counts) == 0 {
		ix.log.Warn("empty vocabulary after stop-word removal; index unavailable", "chunks", len(ix.records))
		return
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) > ix.maxFeatures {
		sort.SliceStable(terms, func(a, b int) bool { return counts[terms[a]] > counts[terms[b]] })
		terms = terms[:ix.maxFeatures]
		sort.Strings(terms)
	}

	n := float64(len(ix.records))
	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	ix.vocabulary, ix.idf = vocabulary, idf

	rows := make([]sparseVector, len(docs))
	for i, tokens := range docs {
		rows[i] = ix.weigh(tokens)
	}
	ix.rows = rows
	ix.log.Debug("index rebuilt", "chunks", len(ix.records), "vocabulary", len(terms))
}

func (ix *Index) vectorize(text string) sparseVector {
	return ix.weigh(ix.tokenize(text))
}

// weigh turns tokens into an L2-normalised tf*idf vector over the current vocabulary.
func (ix *Index) weigh(tokens []string) sparseVector {
	vec := make(sparseVector)
	for _, tok := range tokens {
		if idx, ok := ix.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	norm := 0.0
	for idx, tf := range vec {
		w := tf * ix.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

func (ix *Index) tokenize(text string) []string {
	raw := ix.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := ix.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// cosine of two L2-normalised vectors, clamped to [0,1].
func cosine(a, b sparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	sum := 0.0
	for idx, v := range a {
		sum += v * b[idx]
	}
	switch {
	case sum < 0:
		return 0
	case sum > 1:
		return 1
	}
	return sum
}

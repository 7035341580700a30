// Package chunker splits raw document text into overlapping segments for indexing.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	DefaultTargetSize   = 1000
	DefaultOverlapWords = 200

	DefaultWindowWords = 300
	DefaultWindowStep  = 50
)

// Policy names a splitting strategy. It is recorded on each Document so a
// document can be re-chunked the way it was originally ingested.
type Policy string

const (
	PolicyParagraph Policy = "paragraph"
	PolicyWords     Policy = "words"
)

// Func splits text into ordered chunks.
type Func func(text string) []string

// ParsePolicy validates a policy name. Empty selects the paragraph policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyParagraph:
		return PolicyParagraph, nil
	case PolicyWords:
		return PolicyWords, nil
	}
	return "", fmt.Errorf("unknown chunk policy %q", s)
}

// New returns the splitter for policy. Non-positive size or negative overlap
// fall back to the policy defaults.
func New(policy Policy, size, overlap int) Func {
	switch policy {
	case PolicyWords:
		if size <= 0 {
			size = DefaultWindowWords
		}
		if overlap < 0 {
			overlap = DefaultWindowStep
		}
		return func(text string) []string { return Words(text, size, overlap) }
	default:
		if size <= 0 {
			size = DefaultTargetSize
		}
		if overlap < 0 {
			overlap = DefaultOverlapWords
		}
		return func(text string) []string { return Paragraphs(text, size, overlap) }
	}
}

// Paragraphs greedily packs blank-line separated paragraphs into chunks of
// roughly targetSize characters. When a chunk is closed, the next one is
// seeded with its last overlapWords words (or the whole chunk when it has no
// more words than that). A single paragraph longer than targetSize is never
// split, so targetSize is a soft cap.
func Paragraphs(text string, targetSize, overlapWords int) []string {
	var (
		chunks  []string
		current string
	)
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current != "" && utf8.RuneCountInString(current)+utf8.RuneCountInString(para) > targetSize {
			chunks = append(chunks, current)
			seed := tailWords(current, overlapWords)
			current = para
			if seed != "" {
				current = seed + " " + para
			}
			continue
		}
		if current != "" {
			current += "\n\n"
		}
		current += para
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func tailWords(chunk string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(chunk)
	if len(words) > n {
		return strings.Join(words[len(words)-n:], " ")
	}
	return chunk
}

// Words splits text into windows of chunkSize words advancing by
// chunkSize-overlap words, for text without paragraph structure.
func Words(text string, chunkSize, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultWindowWords
	}
	step := chunkSize - overlap
	if step < 1 {
		step = 1
	}
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

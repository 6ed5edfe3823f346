package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"
)

// StaticDimensions is the embedding dimension produced by StaticEmbedder.
const StaticDimensions = 256

// tokenWeight and ngramWeight blend two signals: word tokens carry most
// of the weight, character n-grams add a signal that survives typos and
// partial matches.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// StaticEmbedder generates deterministic, hash-based embeddings with no
// network dependency and no model download — the default embedder for
// tests, examples, and offline use.
type StaticEmbedder struct {
	mu     sync.RWMutex
	closed bool
}

// NewStaticEmbedder constructs a StaticEmbedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

// Embed satisfies Embedder. Embed(x) == Embed(x) always — the
// hash-based construction is a pure function of its input.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("embedder is closed")
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, StaticDimensions), nil
	}

	return normalizeVector(e.generateVector(trimmed)), nil
}

func (e *StaticEmbedder) generateVector(text string) []float32 {
	vector := make([]float32, StaticDimensions)

	for _, tok := range tokenize(text) {
		vector[hashToIndex(tok, StaticDimensions)] += tokenWeight
	}

	normalized := normalizeForNgrams(text)
	for _, ng := range extractNgrams(normalized, ngramSize) {
		vector[hashToIndex(ng, StaticDimensions)] += ngramWeight
	}

	return vector
}

func tokenize(text string) []string {
	var tokens []string
	for _, w := range tokenRegex.FindAllString(text, -1) {
		tokens = append(tokens, strings.ToLower(w))
	}
	return tokens
}

func normalizeForNgrams(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func extractNgrams(text string, n int) []string {
	if len(text) < n {
		return nil
	}
	ngrams := make([]string, 0, len(text)-n+1)
	for i := 0; i <= len(text)-n; i++ {
		ngrams = append(ngrams, text[i:i+n])
	}
	return ngrams
}

func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}

// Dimensions returns the fixed embedding width.
func (e *StaticEmbedder) Dimensions() int { return StaticDimensions }

// ModelName identifies this embedder for cache keys and introspection.
func (e *StaticEmbedder) ModelName() string { return "static" }

// Available is always true until Close, since there is no external
// dependency to be unavailable.
func (e *StaticEmbedder) Available(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close marks the embedder closed; further Embed calls fail.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Package rag implements retrieval-augmented answering over the section
// library: brute-force cosine retrieval plus grounded answer synthesis.
package rag

import (
	"context"
	"fmt"
	"math"
	"sort"

	"paperagent/internal/embedding"
	"paperagent/internal/paper"
	"paperagent/internal/storage"
)

// SectionSource supplies retrieval candidates. Zero paperID means the whole
// library. *storage.DB satisfies it; an index structure could too.
type SectionSource interface {
	SectionsForRetrieval(paperID int64) ([]storage.SectionRecord, error)
}

// Result is one retrieved section with its similarity score.
type Result struct {
	Section storage.SectionRecord `json:"section"`
	Score   float32               `json:"score"`
}

// Retriever ranks stored sections against a query by cosine similarity.
type Retriever struct {
	source   SectionSource
	embedder embedding.Provider
}

// NewRetriever creates a Retriever over the given candidate source.
func NewRetriever(source SectionSource, embedder embedding.Provider) *Retriever {
	return &Retriever{source: source, embedder: embedder}
}

// Retrieve embeds the query and returns the topK highest-scoring sections,
// scoped to one paper when paperID is positive. Ordering is deterministic:
// score descending, ties broken by ascending section id. Negative scores
// are returned like any other; there is no implicit relevance threshold.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, paperID int64) ([]Result, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", paper.ErrConfiguration, topK)
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := r.source.SectionsForRetrieval(paperID)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) != len(queryVec) {
			return nil, fmt.Errorf("%w: section %d has %d-dimensional embedding, query has %d; re-ingest with the active embedding model",
				paper.ErrConfiguration, c.ID, len(c.Embedding), len(queryVec))
		}
		results = append(results, Result{Section: c, Score: CosineSimilarity(queryVec, c.Embedding)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Section.ID < results[j].Section.ID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))
	if denominator == 0 {
		return 0
	}

	return dot / denominator
}

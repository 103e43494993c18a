package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// SimModelName identifies the simulation backend in stored metadata.
const SimModelName = "simulation"

// Sim is a deterministic offline embedding provider. It hashes word unigrams
// and bigrams into a fixed number of buckets and L2-normalizes the result,
// so related texts land on overlapping buckets. It satisfies the same
// contract as a live provider: fixed dimensionality, identical output for
// identical input.
type Sim struct {
	dimensions int
}

// NewSim creates a simulation provider with the given dimensionality.
func NewSim(dimensions int) *Sim {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Sim{dimensions: dimensions}
}

// Embed produces the deterministic embedding for text.
func (s *Sim) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)

	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		vec[bucket(w, s.dimensions)]++
		if i+1 < len(words) {
			vec[bucket(w+" "+words[i+1], s.dimensions)]++
		}
	}

	normalize(vec)
	return vec, nil
}

// ModelName returns the simulation model identifier.
func (s *Sim) ModelName() string { return SimModelName }

// Dimensions returns the configured vector dimensions.
func (s *Sim) Dimensions() int { return s.dimensions }

// bucket maps a term to a vector index via FNV-1a.
func bucket(term string, dims int) int {
	h := fnv.New32a()
	h.Write([]byte(term))
	return int(h.Sum32() % uint32(dims))
}

// normalize scales vec to unit length. The zero vector is left untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

package embedding

import (
	"context"
	"math"
	"testing"
)

func TestSimDeterministic(t *testing.T) {
	s := NewSim(64)

	first, err := s.Embed(context.Background(), "attention is all you need")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Embed(context.Background(), "attention is all you need")
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("embedding differs at index %d: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestSimDimensions(t *testing.T) {
	s := NewSim(32)
	if s.Dimensions() != 32 {
		t.Errorf("Dimensions() = %d, want 32", s.Dimensions())
	}

	vec, err := s.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 32 {
		t.Errorf("len(vec) = %d, want 32", len(vec))
	}

	// Non-positive dimensionality falls back to the default.
	if got := NewSim(0).Dimensions(); got != DefaultDimensions {
		t.Errorf("NewSim(0).Dimensions() = %d, want %d", got, DefaultDimensions)
	}
}

func TestSimUnitLength(t *testing.T) {
	s := NewSim(64)
	vec, err := s.Embed(context.Background(), "vectors are normalized to unit length")
	if err != nil {
		t.Fatal(err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); math.Abs(norm-1) > 1e-5 {
		t.Errorf("norm = %f, want 1", norm)
	}
}

func TestSimEmptyText(t *testing.T) {
	s := NewSim(16)
	vec, err := s.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("vec[%d] = %f, want 0 for empty text", i, v)
		}
	}
}

func TestSimDistinguishesTexts(t *testing.T) {
	s := NewSim(128)
	a, err := s.Embed(context.Background(), "convolutional networks for image classification")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Embed(context.Background(), "reinforcement learning from human feedback")
	if err != nil {
		t.Fatal(err)
	}

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("unrelated texts produced identical embeddings")
	}
}

func TestSimCaseInsensitive(t *testing.T) {
	s := NewSim(64)
	a, err := s.Embed(context.Background(), "Deep Learning")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Embed(context.Background(), "deep learning")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("case changed the embedding at index %d", i)
		}
	}
}

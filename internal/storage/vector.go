package storage

import (
	"encoding/binary"
	"fmt"
	"math"

	"paperagent/internal/paper"
)

// Embeddings are stored as little-endian float32 blobs, four bytes per
// dimension. Dimensionality is validated against the recorded library meta,
// never inferred from blob length alone.

// encodeVector serializes an embedding vector.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeVector deserializes an embedding blob. When wantDims is positive,
// a length mismatch is a configuration error (mixed embedding models).
func decodeVector(blob []byte, wantDims int) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: embedding blob length %d is not a multiple of 4", paper.ErrConfiguration, len(blob))
	}
	if wantDims > 0 && len(blob) != 4*wantDims {
		return nil, fmt.Errorf("%w: stored embedding has %d dimensions, expected %d",
			paper.ErrConfiguration, len(blob)/4, wantDims)
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec, nil
}

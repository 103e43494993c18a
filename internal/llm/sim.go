package llm

import (
	"context"
	"fmt"
	"hash/fnv"
)

// SimModelName identifies the simulation backend.
const SimModelName = "simulation"

// Sim is a deterministic offline completion provider. It returns placeholder
// text derived only from the prompt, so repeated calls are reproducible.
// Used when no live model is configured.
type Sim struct{}

// NewSim creates a simulation provider.
func NewSim() *Sim { return &Sim{} }

// Complete returns deterministic placeholder text for the prompt.
func (s *Sim) Complete(_ context.Context, prompt string, _ int) (string, error) {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	return fmt.Sprintf(
		"[simulated completion %08x] The language model is running in simulation mode; "+
			"no live completion was generated for this %d-character prompt.",
		h.Sum32(), len(prompt)), nil
}

// ModelName returns the simulation model identifier.
func (s *Sim) ModelName() string { return SimModelName }

// Package salad implements the graph-mixing engine: it merges several
// single-document knowledge graphs at shared entity/event nodes and
// optionally crops the result around the merge points, producing
// bounded-size mixed graphs for downstream coherence-model training.
package salad

import "errors"

// ErrNoEligibleSample is returned when the configured attempt budget is
// exhausted without finding a source-graph sample that satisfies the
// merge-point and novelty constraints. It signals that the data cannot
// support the requested parameters, not a bug.
var ErrNoEligibleSample = errors.New("no eligible source-graph sample found")

// Params are the run-scoped generation parameters.
type Params struct {
	// NumSources is the number of single-document graphs merged into
	// one salad.
	NumSources int `json:"num_sources"`

	// NumSharedEres is the required number of event merge points.
	NumSharedEres int `json:"num_shared_eres"`

	// AbridgeHops crops each salad to this hop radius around its merge
	// points. Negative disables abridging.
	AbridgeHops int `json:"num_abridge_hops"`

	// MaxSizeKB rejects salads whose serialized graph exceeds this
	// size. Zero disables the check.
	MaxSizeKB int `json:"max_size_kb"`

	// MinOneStep and MinTwoStep are the minimum connectedness scores a
	// node needs to be a merge candidate.
	MinOneStep float64 `json:"min_connectedness_one_step"`
	MinTwoStep float64 `json:"min_connectedness_two_step"`

	// MaxTwoStepSum caps the summed two-step connectedness of a merge
	// combination. Zero disables the cap.
	MaxTwoStepSum float64 `json:"max_connectedness_two_step"`

	// MaxAttempts bounds the resample loop of a single mixture attempt.
	MaxAttempts int `json:"max_attempts"`
}

// DefaultParams returns the standard generation parameters.
func DefaultParams() Params {
	return Params{
		NumSources:    3,
		NumSharedEres: 3,
		AbridgeHops:   -1,
		MaxSizeKB:     1500,
		MinOneStep:    2,
		MinTwoStep:    4,
		MaxTwoStepSum: 60,
		MaxAttempts:   10000,
	}
}

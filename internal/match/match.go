// Package match decides whether two embeddings belong to the same person.
package match

import (
	"fmt"
	"math"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// Distance returns the Euclidean distance between a and b. Squares are summed
// in float64 so the result does not depend on float32 accumulation order.
func Distance(a, b domain.Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.ErrDimensionMismatch.WithError(
			fmt.Errorf("probe has %d dimensions, enrolled has %d", len(a), len(b)))
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Decide compares probe against enrolled. The result matches only when the
// distance is strictly below threshold.
func Decide(probe, enrolled domain.Embedding, threshold float64) (domain.MatchDecision, error) {
	distance, err := Distance(probe, enrolled)
	if err != nil {
		return domain.MatchDecision{}, err
	}

	return domain.MatchDecision{
		Match:     distance < threshold,
		Distance:  distance,
		Threshold: threshold,
	}, nil
}

// Engine holds a configured threshold
type Engine struct {
	threshold float64
}

// NewEngine creates an Engine using domain.DefaultMatchThreshold
func NewEngine() *Engine {
	return &Engine{threshold: domain.DefaultMatchThreshold}
}

// WithThreshold returns a copy of the engine using threshold
func (e *Engine) WithThreshold(threshold float64) *Engine {
	return &Engine{threshold: threshold}
}

// Threshold returns the configured threshold
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Decide compares probe against enrolled using the configured threshold
func (e *Engine) Decide(probe, enrolled domain.Embedding) (domain.MatchDecision, error) {
	return Decide(probe, enrolled, e.threshold)
}

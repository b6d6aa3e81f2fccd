package translate

import (
	"fmt"

	"github.com/alnah/translocutor/internal/caption"
	"github.com/alnah/translocutor/internal/token"
)

// DefaultTargetTokens is the default per-partition token budget.
// Responses are capped at roughly 4K tokens whatever the input size, and a
// translation is about as long as its source, so the budget stays below that.
const DefaultTargetTokens = 3500

// Partition is a contiguous run of captions sent as one translation request.
type Partition []caption.Request

// Split groups captions into partitions whose estimated size stays within
// targetTokens, preserving input order. It also returns the sum of the
// per-caption estimates.
//
// A caption that alone exceeds targetTokens is never split: it gets a
// partition of its own, which is then over budget. Empty input yields a
// single empty partition.
func Split(captions []caption.Request, targetTokens int, est token.Estimator) ([]Partition, int, error) {
	if targetTokens <= 0 {
		return nil, 0, fmt.Errorf("got %d: %w", targetTokens, ErrInvalidBudget)
	}

	partitions := []Partition{{}}
	currentTokens := 0
	totalTokens := 0

	for i, c := range captions {
		n, err := est.Estimate([]caption.Request{c})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to estimate caption %d: %w", i+1, err)
		}

		last := len(partitions) - 1
		if currentTokens+n > targetTokens && len(partitions[last]) > 0 {
			partitions = append(partitions, Partition{})
			last++
			currentTokens = 0
		}

		partitions[last] = append(partitions[last], c)
		currentTokens += n
		totalTokens += n
	}

	return partitions, totalTokens, nil
}

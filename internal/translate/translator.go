// Package translate batches captions into token-bounded partitions, sends
// each partition to a chat model as one structured request, and reassembles
// the translations in input order.
package translate

import (
	"context"

	"github.com/alnah/translocutor/internal/caption"
	"github.com/alnah/translocutor/internal/token"
)

// Result is the outcome of translating one caption list.
type Result struct {
	// Captions is aligned with the input: Captions[i] translates input[i].
	Captions []caption.FullTranslated
	// EstimatedTokens is the sum of per-caption estimates used for partitioning.
	EstimatedTokens int
	// Usage is the service-reported usage summed over all requests.
	Usage Usage
	// Partitions is the number of requests sent.
	Partitions int
}

// Translator runs the full pipeline: partition, translate, flatten.
type Translator struct {
	estimator    token.Estimator
	orchestrator *Orchestrator
	targetTokens int
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithTargetTokens sets the per-partition token budget.
// Non-positive values are rejected when Translate runs.
func WithTargetTokens(n int) TranslatorOption {
	return func(t *Translator) {
		t.targetTokens = n
	}
}

// NewTranslator creates a Translator.
func NewTranslator(est token.Estimator, orch *Orchestrator, opts ...TranslatorOption) *Translator {
	t := &Translator{
		estimator:    est,
		orchestrator: orch,
		targetTokens: DefaultTargetTokens,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate translates captions into targetLanguage.
// Empty input returns an empty Result without contacting the service.
func (t *Translator) Translate(ctx context.Context, captions []caption.Request, targetLanguage string) (Result, error) {
	partitions, estimated, err := Split(captions, t.targetTokens, t.estimator)
	if err != nil {
		return Result{}, err
	}

	groups, usage, err := t.orchestrator.TranslateAll(ctx, partitions, targetLanguage)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Captions:        Flatten(groups),
		EstimatedTokens: estimated,
		Usage:           usage,
		Partitions:      len(groups),
	}, nil
}

package translate

import (
	"context"
	"fmt"

	"github.com/alnah/translocutor/internal/caption"
)

// Orchestrator translates partitions one at a time through a Client.
// Partition i+1 is not sent until partition i has been validated.
type Orchestrator struct {
	client   Client
	reporter StatusReporter
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithStatusReporter sets the reporter notified around each request.
func WithStatusReporter(r StatusReporter) OrchestratorOption {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
	}
}

// NewOrchestrator creates an Orchestrator around client.
func NewOrchestrator(client Client, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TranslateAll translates every non-empty partition in order and returns the
// results grouped by partition along with the summed usage.
//
// Any failure (transport error, refusal, malformed output, wrong caption
// count) aborts the whole run; no partial results are returned.
func (o *Orchestrator) TranslateAll(ctx context.Context, partitions []Partition, targetLanguage string) ([][]caption.FullTranslated, Usage, error) {
	results := make([][]caption.FullTranslated, 0, len(partitions))
	var total Usage

	for i, p := range partitions {
		if len(p) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, Usage{}, err
		}

		o.reporter.OnStart(fmt.Sprintf("translating partition %d of %d...", i+1, len(partitions)))

		full, usage, err := o.translatePartition(ctx, p, targetLanguage)
		if err != nil {
			return nil, Usage{}, fmt.Errorf("partition %d/%d: %w", i+1, len(partitions), err)
		}

		results = append(results, full)
		total = total.Add(usage)

		o.reporter.OnEnd(fmt.Sprintf("...completed partition %d of %d", i+1, len(partitions)))
	}

	return results, total, nil
}

// translatePartition performs and validates a single exchange.
func (o *Orchestrator) translatePartition(ctx context.Context, p Partition, targetLanguage string) ([]caption.FullTranslated, Usage, error) {
	outcome, err := o.client.Translate(ctx, Request{
		Captions:       p,
		TargetLanguage: targetLanguage,
	})
	if err != nil {
		return nil, Usage{}, err
	}

	switch out := outcome.(type) {
	case *Success:
		if len(out.Captions) != len(p) {
			return nil, Usage{}, fmt.Errorf("sent %d captions, received %d: %w",
				len(p), len(out.Captions), ErrCardinalityMismatch)
		}
		return Pair(p, out.Captions), out.Usage, nil
	case *Refusal:
		return nil, Usage{}, fmt.Errorf("%s: %w", out.Reason, ErrRefused)
	default:
		return nil, Usage{}, fmt.Errorf("unexpected outcome %T: %w", outcome, ErrMalformedResponse)
	}
}

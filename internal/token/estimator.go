// Package token estimates how many model tokens a batch of captions costs.
//
// The estimate is advisory: it counts the serialized captions only, not the
// system prompt, the response schema or message framing. Callers compare it
// with the usage the service reports rather than treating it as a ceiling.
package token

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/alnah/translocutor/internal/caption"
)

// DefaultModel is the model whose tokenizer is used when none is configured.
const DefaultModel = "gpt-4o-2024-08-06"

// Estimator returns the estimated token count of serialized captions.
type Estimator interface {
	Estimate(captions []caption.Request) (int, error)
}

// encoder is the subset of *tiktoken.Tiktoken used for counting.
// Tests substitute a fake to avoid loading BPE ranks.
type encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

// Compile-time interface compliance checks.
var (
	_ Estimator = (*TiktokenEstimator)(nil)
	_ encoder   = (*tiktoken.Tiktoken)(nil)
)

// TiktokenEstimator counts tokens with the BPE encoding of a given model.
// It is safe for concurrent use.
type TiktokenEstimator struct {
	model string
	enc   encoder
}

// New returns an estimator for model.
// Returns an *UnsupportedModelError if tiktoken has no encoding for the model,
// or a *LoadError if the encoding's BPE ranks cannot be loaded.
//
// The first call for an encoding loads its BPE ranks (cached on disk by
// tiktoken-go; set TIKTOKEN_CACHE_DIR to control where).
func New(model string) (*TiktokenEstimator, error) {
	return newWithLoader(model, func(name string) (encoder, error) {
		return tiktoken.GetEncoding(name)
	})
}

// newWithLoader resolves the encoding for model and loads it with load.
func newWithLoader(model string, load func(encoding string) (encoder, error)) (*TiktokenEstimator, error) {
	name, ok := EncodingFor(model)
	if !ok {
		return nil, &UnsupportedModelError{Model: model}
	}
	enc, err := load(name)
	if err != nil {
		return nil, &LoadError{Model: model, Encoding: name, Err: err}
	}
	return &TiktokenEstimator{model: model, enc: enc}, nil
}

// EncodingFor returns the tiktoken encoding name used by model.
// Exact names win over prefixes; among prefixes the longest match wins.
func EncodingFor(model string) (string, bool) {
	if model == "" {
		return "", false
	}
	if name, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
		return name, true
	}
	best, name := "", ""
	for prefix, enc := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best, name = prefix, enc
		}
	}
	return name, best != ""
}

// newWithEncoder builds an estimator around an arbitrary encoder.
func newWithEncoder(model string, enc encoder) *TiktokenEstimator {
	return &TiktokenEstimator{model: model, enc: enc}
}

// Model returns the model the estimator counts for.
func (e *TiktokenEstimator) Model() string {
	return e.model
}

// Estimate serializes captions the same way the translation request does
// and returns the number of tokens in that text.
func (e *TiktokenEstimator) Estimate(captions []caption.Request) (int, error) {
	payload, err := caption.Marshal(captions)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize captions: %w", err)
	}
	// Special tokens are counted as plain text; subtitles never carry them.
	return len(e.enc.Encode(string(payload), nil, nil)), nil
}

package translate

import (
	"context"

	"github.com/alnah/translocutor/internal/caption"
)

// Request is one partition to translate into TargetLanguage.
type Request struct {
	Captions       []caption.Request
	TargetLanguage string
}

// Client sends one translation request and returns the service's outcome.
// A non-nil error means the exchange itself failed (transport, HTTP status,
// unparsable body); a refusal is reported as an Outcome, not an error.
type Client interface {
	Translate(ctx context.Context, req Request) (Outcome, error)
}

// Outcome is the result of a completed exchange: either *Success or *Refusal.
type Outcome interface {
	outcome()
}

// Success carries the structured translation and the request's usage.
type Success struct {
	Captions []caption.Translated
	Usage    Usage
}

// Refusal carries the model's explanation for declining the request.
type Refusal struct {
	Reason string
}

func (*Success) outcome() {}
func (*Refusal) outcome() {}

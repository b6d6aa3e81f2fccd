package token

import (
	"errors"
	"fmt"
)

// ErrUnsupportedModel indicates the model has no known tokenizer mapping.
var ErrUnsupportedModel = errors.New("unsupported model")

// UnsupportedModelError reports which model could not be mapped to a tokenizer.
// It matches ErrUnsupportedModel with errors.Is.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("no tokenizer for model %q", e.Model)
}

// Is reports whether target is ErrUnsupportedModel.
func (e *UnsupportedModelError) Is(target error) bool {
	return target == ErrUnsupportedModel
}

// LoadError reports that a known encoding could not be loaded,
// typically because its BPE ranks could not be downloaded.
type LoadError struct {
	Model    string
	Encoding string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load tokenizer %s for model %q (set TIKTOKEN_CACHE_DIR to a cache with its ranks when offline): %v",
		e.Encoding, e.Model, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

package translate

import "errors"

// ErrInvalidBudget indicates a non-positive per-partition token budget.
var ErrInvalidBudget = errors.New("token budget must be positive")

// ErrRefused indicates the model declined to produce a translation.
var ErrRefused = errors.New("translation refused")

// ErrCardinalityMismatch indicates the model returned a different number
// of captions than it was sent.
var ErrCardinalityMismatch = errors.New("caption count mismatch")

// ErrMalformedResponse indicates the model output did not match the response schema.
var ErrMalformedResponse = errors.New("malformed translation response")

// ErrEmptyResponse indicates the service returned no choices or no content.
var ErrEmptyResponse = errors.New("empty translation response")

// ErrEmptyAPIKey indicates that the API key was not provided.
var ErrEmptyAPIKey = errors.New("API key is required")

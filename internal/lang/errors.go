package lang

import "errors"

// ErrInvalid indicates an invalid language code or name was specified.
var ErrInvalid = errors.New("invalid language")

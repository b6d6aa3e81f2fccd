package subtitle

import "errors"

var (
	// ErrUnsupportedFormat indicates a file extension other than .vtt or .srt.
	ErrUnsupportedFormat = errors.New("unsupported caption format")

	// ErrInvalidFile indicates a caption file that could not be parsed.
	ErrInvalidFile = errors.New("invalid caption file")
)

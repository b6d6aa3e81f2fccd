package config

import "errors"

var (
	// ErrInvalidKey indicates a key that cannot be stored in the key=value file.
	ErrInvalidKey = errors.New("invalid config key")

	// ErrUnknownKey indicates a well-formed key that is not a supported setting.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalidValue indicates a setting whose value cannot be parsed.
	ErrInvalidValue = errors.New("invalid config value")

	// ErrInvalidSyntax indicates a config file line without '='.
	ErrInvalidSyntax = errors.New("invalid config syntax")

	// ErrNotDirectory indicates an output-dir that exists but is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")

	// ErrNotWritable indicates an output-dir the user cannot write to.
	ErrNotWritable = errors.New("directory is not writable")
)

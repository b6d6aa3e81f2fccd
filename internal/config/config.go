package config

import (
	"bufio"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// appName names the configuration directory.
const appName = "translocutor"

// Config keys.
const (
	KeyOutputDir      = "output-dir"
	KeyModel          = "model"
	KeyTargetTokens   = "target-tokens"
	KeyTimeout        = "timeout"
	KeyTargetLanguage = "target-language"
)

// Environment variable fallbacks.
const (
	EnvOutputDir      = "TRANSLOCUTOR_OUTPUT_DIR"
	EnvModel          = "TRANSLOCUTOR_MODEL"
	EnvTargetTokens   = "TRANSLOCUTOR_TARGET_TOKENS"
	EnvTimeout        = "TRANSLOCUTOR_TIMEOUT"
	EnvTargetLanguage = "TRANSLOCUTOR_TARGET_LANGUAGE"
)

// Keys lists the supported settings in display order.
var Keys = []string{
	KeyOutputDir,
	KeyModel,
	KeyTargetTokens,
	KeyTimeout,
	KeyTargetLanguage,
}

var envByKey = map[string]string{
	KeyOutputDir:      EnvOutputDir,
	KeyModel:          EnvModel,
	KeyTargetTokens:   EnvTargetTokens,
	KeyTimeout:        EnvTimeout,
	KeyTargetLanguage: EnvTargetLanguage,
}

// EnvFor returns the environment variable backing key, or "" for unknown keys.
func EnvFor(key string) string {
	return envByKey[key]
}

// IsKey reports whether key is a supported setting.
func IsKey(key string) bool {
	return slices.Contains(Keys, key)
}

// Config holds user configuration loaded from ~/.config/translocutor/config.
// Zero values mean "not set"; callers apply their own defaults.
type Config struct {
	OutputDir      string
	Model          string
	TargetTokens   int
	Timeout        time.Duration
	TargetLanguage string
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/translocutor.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
// Unknown keys in the file are ignored; malformed values are errors.
func Load() (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		data = make(map[string]string)
	}

	for _, key := range Keys {
		value, source := data[key], p
		// Environment variable fallback (only if not set in config).
		if value == "" {
			value, source = os.Getenv(envByKey[key]), envByKey[key]
		}
		if value == "" {
			continue
		}
		if err := cfg.set(key, value); err != nil {
			return Config{}, fmt.Errorf("%s: %w", source, err)
		}
	}

	return cfg, nil
}

// set assigns a raw value to the field behind key.
func (c *Config) set(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}
	switch key {
	case KeyOutputDir:
		c.OutputDir = ExpandPath(value)
	case KeyModel:
		c.Model = value
	case KeyTargetTokens:
		c.TargetTokens, _ = strconv.Atoi(value)
	case KeyTimeout:
		c.Timeout, _ = time.ParseDuration(value)
	case KeyTargetLanguage:
		c.TargetLanguage = value
	}
	return nil
}

// Validate checks that value parses for key.
// target-tokens must be a positive integer and timeout a positive Go duration.
// Language and directory checks belong to their callers.
func Validate(key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("%q (valid keys: %s): %w", key, strings.Join(Keys, ", "), ErrUnknownKey)
	}
	switch key {
	case KeyTargetTokens:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s=%q must be a positive integer: %w", key, value, ErrInvalidValue)
		}
	case KeyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s=%q must be a positive duration like 90s or 10m: %w", key, value, ErrInvalidValue)
		}
	default:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s cannot be empty: %w", key, ErrInvalidValue)
		}
	}
	return nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value.
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: %q: %w", lineNum, line, ErrInvalidSyntax)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\n\r#") {
		return fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	if strings.ContainsAny(value, "\n\r") {
		return fmt.Errorf("value for %s contains a newline: %w", key, ErrInvalidValue)
	}

	p, err := path()
	if err != nil {
		return err
	}

	// Ensure config directory exists.
	d := filepath.Dir(p)
	if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	// Read existing config (if any). A corrupt file is rewritten.
	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}

	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted for stable diffs.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, key := range slices.Sorted(maps.Keys(data)) {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// EnsureOutputDir checks that d can be used as output-dir, creating it if missing.
// Expands a leading ~.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("output-dir cannot be empty: %w", ErrInvalidValue)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access directory: %w", err)
		}
		if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
			return fmt.Errorf("cannot create directory: %w", err)
		}
		return nil
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", d, ErrNotDirectory)
	}

	// Check if writable by attempting to create a temp file.
	f, err := os.CreateTemp(d, ".translocutor-write-test-*")
	if err != nil {
		return fmt.Errorf("%s: %w", d, ErrNotWritable)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name) // Best effort cleanup, ignore error

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Dir returns the configuration directory path.
func Dir() (string, error) {
	return dir()
}

package lang

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultTarget is the target language when none is configured.
const DefaultTarget = "English"

// maxNameLen bounds free-form language names; they end up in the prompt.
const maxNameLen = 64

// codePattern matches BCP 47 shaped input: a 2-3 letter base with optional
// script (4 letters) or region (2 letters, 3 digits) subtags ("fr", "pt-BR",
// "zh_Hant_TW", "es-419"). Anything else, including hyphenated names like
// "Old-English", is treated as a name.
var codePattern = regexp.MustCompile(`^[A-Za-z]{2,3}([-_]([A-Za-z]{4}|[A-Za-z]{2}|[0-9]{3}))*$`)

// Normalize normalizes a language code to lowercase with hyphen separator.
// Accepts: "pt-BR", "pt_BR", "PT-BR", "pt-br" -> "pt-br"
func Normalize(lang string) string {
	return strings.ToLower(strings.ReplaceAll(lang, "_", "-"))
}

// IsCode reports whether s looks like a language code rather than a name.
func IsCode(s string) bool {
	return codePattern.MatchString(s)
}

// Validate checks a target language.
// Codes must be known BCP 47 tags; names must be printable and short.
// Empty means the default target and is valid.
func Validate(lang string) error {
	_, err := ParseTarget(lang)
	return err
}

// ParseTarget resolves the target language used in the translation prompt.
// Codes are expanded to their English name ("fr" -> "French",
// "pt-BR" -> "Brazilian Portuguese"); names pass through trimmed.
// Empty input yields DefaultTarget.
func ParseTarget(lang string) (string, error) {
	s := strings.TrimSpace(lang)
	if s == "" {
		return DefaultTarget, nil
	}

	if IsCode(s) {
		tag, err := language.Parse(Normalize(s))
		if err != nil || tag == language.Und {
			return "", fmt.Errorf("invalid language code %q (use ISO 639 codes like 'en', 'fr', 'pt-BR' or a name like 'German'): %w",
				lang, ErrInvalid)
		}
		return DisplayName(tag.String()), nil
	}

	if len(s) > maxNameLen {
		return "", fmt.Errorf("language name too long (%d > %d characters): %w", len(s), maxNameLen, ErrInvalid)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("language name %q contains control characters: %w", lang, ErrInvalid)
		}
	}
	return s, nil
}

// BaseCode extracts the ISO 639-1 base language code from a locale.
// Examples: "pt-BR" -> "pt", "zh-CN" -> "zh", "en" -> "en"
func BaseCode(lang string) string {
	if lang == "" {
		return ""
	}
	normalized := Normalize(lang)
	if idx := strings.Index(normalized, "-"); idx != -1 {
		return normalized[:idx]
	}
	return normalized
}

// DisplayName returns the English name of a language code.
// Falls back to the code itself when the code is not a known tag.
func DisplayName(code string) string {
	tag, err := language.Parse(Normalize(code))
	if err != nil || tag == language.Und {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// Detect guesses the dominant language of lines by majority vote over
// per-line detection. Ties go to the language seen first.
// Returns language.Und when no line is recognized.
func Detect(lines []string) language.Tag {
	counts := make(map[string]int)
	var order []string

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		detected := whatlanggo.DetectLang(line)
		if detected < 0 {
			continue
		}
		code := detected.Iso6391()
		if code == "" {
			continue
		}
		if _, seen := counts[code]; !seen {
			order = append(order, code)
		}
		counts[code]++
	}

	var top string
	for _, code := range order {
		if counts[code] > counts[top] {
			top = code
		}
	}
	if top == "" {
		return language.Und
	}
	return language.Make(top)
}

package subtitle

import (
	"path/filepath"
	"strings"
)

const (
	// OutputInfix is inserted before the extension of translated files.
	OutputInfix = "all"

	// fallbackStem names the output when the input has no stem (".vtt").
	fallbackStem = "new_captions"
)

// OutputPath derives the translated file path from the input path:
// "talks/movie.vtt" -> "talks/movie.all.vtt". A non-empty outputDir
// replaces the input directory. Only the final extension is considered,
// so "movie.da.vtt" -> "movie.da.all.vtt".
func OutputPath(input, outputDir string) string {
	dir, base := filepath.Split(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = fallbackStem
	}
	if outputDir != "" {
		dir = outputDir
	}
	return filepath.Join(dir, stem+"."+OutputInfix+ext)
}

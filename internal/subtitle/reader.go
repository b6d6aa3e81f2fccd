// Package subtitle reads WebVTT and SubRip caption files and writes the
// bilingual (original + translated) output.
package subtitle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astisub"

	"github.com/alnah/translocutor/internal/caption"
	"github.com/alnah/translocutor/internal/format"
)

// Format identifies a caption file format.
type Format string

// Supported formats.
const (
	VTT Format = "vtt"
	SRT Format = "srt"
)

// FormatOf returns the format of path based on its extension (case-insensitive).
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".vtt":
		return VTT, nil
	case ".srt":
		return SRT, nil
	}
	if ext == "" {
		return "", fmt.Errorf("%s has no extension (supported: .vtt, .srt): %w", path, ErrUnsupportedFormat)
	}
	return "", fmt.Errorf("%s (supported: .vtt, .srt): %w", ext, ErrUnsupportedFormat)
}

// Read loads the cues of a .vtt or .srt file as caption requests.
func Read(path string) ([]caption.Request, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open caption file: %w", err)
	}
	defer file.Close()

	return Parse(file, f)
}

// Parse decodes cues from r. Timestamps are rendered as HH:MM:SS.mmm and
// each cue line becomes one caption line; inline markup is dropped.
func Parse(r io.Reader, f Format) ([]caption.Request, error) {
	var (
		subs *astisub.Subtitles
		err  error
	)
	switch f {
	case VTT:
		subs, err = astisub.ReadFromWebVTT(r)
	case SRT:
		subs, err = astisub.ReadFromSRT(r)
	default:
		return nil, fmt.Errorf("format %q: %w", f, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidFile)
	}

	reqs := make([]caption.Request, 0, len(subs.Items))
	for _, item := range subs.Items {
		reqs = append(reqs, caption.Request{
			Start:   format.Timestamp(item.StartAt),
			End:     format.Timestamp(item.EndAt),
			Caption: itemLines(item),
		})
	}
	return reqs, nil
}

// itemLines flattens an astisub item into plain text lines.
// Whitespace runs left by stripped markup collapse to one space.
func itemLines(item *astisub.Item) []string {
	lines := make([]string, 0, len(item.Lines))
	for _, l := range item.Lines {
		text := strings.Join(strings.Fields(l.String()), " ")
		if text == "" {
			continue
		}
		lines = append(lines, text)
	}
	return lines
}

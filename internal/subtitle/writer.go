package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/translocutor/internal/caption"
)

// Bilingual output style.
const (
	// CueSettings positions the stacked original and translation on the left.
	CueSettings = "position:10%,line-left align:left size:35%"

	ColorOriginal   = "yellow"
	ColorTranslated = "white"
)

// Write renders captions to w in format f, original above translation.
// A nil or empty caption list produces a header-only VTT or an empty SRT.
func Write(w io.Writer, f Format, captions []caption.FullTranslated) error {
	bw := bufio.NewWriter(w)

	switch f {
	case VTT:
		writeVTT(bw, captions)
	case SRT:
		writeSRT(bw, captions)
	default:
		return fmt.Errorf("format %q: %w", f, ErrUnsupportedFormat)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write captions: %w", err)
	}
	return nil
}

func writeVTT(w *bufio.Writer, captions []caption.FullTranslated) {
	w.WriteString("WEBVTT\n")
	for _, c := range captions {
		fmt.Fprintf(w, "\n%s --> %s %s\n", c.Start, c.End, CueSettings)
		fmt.Fprintf(w, "<c.%s>%s</c>\n", ColorOriginal, cueText(c.Original))
		fmt.Fprintf(w, "<c.%s>%s</c>\n", ColorTranslated, cueText(c.Translated.Translated))
	}
}

func writeSRT(w *bufio.Writer, captions []caption.FullTranslated) {
	for i, c := range captions {
		if i > 0 {
			w.WriteString("\n")
		}
		fmt.Fprintf(w, "%d\n%s --> %s\n", i+1, srtTime(c.Start), srtTime(c.End))
		fmt.Fprintf(w, "<font color=\"%s\">%s</font>\n", ColorOriginal, cueText(c.Original))
		fmt.Fprintf(w, "<font color=\"%s\">%s</font>\n", ColorTranslated, cueText(c.Translated.Translated))
	}
}

// cueText joins lines for a cue body. Blank lines would end the cue early
// and are dropped; an arrow would be read as a timing line.
func cueText(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		kept = append(kept, strings.ReplaceAll(l, "-->", "--&gt;"))
	}
	return strings.Join(kept, "\n")
}

// srtTime converts HH:MM:SS.mmm to the SubRip HH:MM:SS,mmm form.
func srtTime(ts string) string {
	if i := strings.LastIndexByte(ts, '.'); i >= 0 {
		return ts[:i] + "," + ts[i+1:]
	}
	return ts
}

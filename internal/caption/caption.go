// Package caption defines the cue records exchanged between the subtitle
// reader, the translation pipeline and the subtitle writer.
//
// JSON tags are part of the wire format: Request is serialized as the user
// payload sent to the model, Translated is the shape the model must return.
package caption

import (
	"bytes"
	"encoding/json"
)

// Request is one source cue to translate.
// Timestamps are kept as the strings read from the source file.
type Request struct {
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Caption []string `json:"caption"`
}

// Translated is the model's translation of exactly one Request.
type Translated struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Translated []string `json:"translated"`
}

// FullTranslated pairs a Translated cue with the original lines it came from.
type FullTranslated struct {
	Translated
	Original []string `json:"original"`
}

// Lines returns a copy of the request's caption lines.
func (r Request) Lines() []string {
	return append([]string(nil), r.Caption...)
}

// Marshal serializes requests as a compact JSON array.
// HTML characters are left unescaped so cue markup like <i> reaches the
// model (and the tokenizer) exactly as written.
func Marshal(reqs []Request) ([]byte, error) {
	if reqs == nil {
		reqs = []Request{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(reqs); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

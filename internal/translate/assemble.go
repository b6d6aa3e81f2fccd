package translate

import "github.com/alnah/translocutor/internal/caption"

// Pair attaches each request's original lines to the translation at the
// same position. Timing always comes from the request; whatever the model
// echoed back is ignored. Callers must have checked that both slices have
// the same length; extra translations are dropped and missing ones are not
// invented.
func Pair(requests []caption.Request, translated []caption.Translated) []caption.FullTranslated {
	n := min(len(requests), len(translated))
	out := make([]caption.FullTranslated, n)
	for i := range n {
		out[i] = caption.FullTranslated{
			Translated: caption.Translated{
				Start:      requests[i].Start,
				End:        requests[i].End,
				Translated: translated[i].Translated,
			},
			Original: requests[i].Lines(),
		}
	}
	return out
}

// Flatten concatenates per-partition results in partition order.
func Flatten(groups [][]caption.FullTranslated) []caption.FullTranslated {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]caption.FullTranslated, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

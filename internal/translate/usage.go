package translate

// Usage holds the token counters reported by the service for one or more requests.
// TotalTokens is expected to equal PromptTokens+CompletionTokens but is taken
// from the service as-is.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Add returns the field-wise sum of u and other.
// The zero Usage is the identity.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// IsZero reports whether no tokens were accounted.
func (u Usage) IsZero() bool {
	return u == Usage{}
}

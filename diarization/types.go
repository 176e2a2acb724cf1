package diarization

import (
	"encoding/json"
)

// Turn is one speaker turn found by diarization.
type Turn struct {
	Speaker    string   `json:"speaker"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Result is a finished diarization job.
type Result struct {
	Turns []Turn
	// Raw is the provider's output document, forwarded to clients unchanged.
	Raw json.RawMessage
}

// MarshalJSON emits the provider's document when available so fields this
// package does not model are not lost.
func (r *Result) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(struct {
		Diarization []Turn `json:"diarization"`
	}{r.Turns})
}

// Speakers returns the distinct speaker labels in order of first appearance.
func (r *Result) Speakers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range r.Turns {
		if !seen[t.Speaker] {
			seen[t.Speaker] = true
			out = append(out, t.Speaker)
		}
	}
	return out
}

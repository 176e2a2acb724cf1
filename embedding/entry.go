package embedding

import (
	"fmt"
	"math"
)

// Entry is one diarized segment and its voiceprint.
type Entry struct {
	ID      string    `json:"id"`
	Speaker string    `json:"speaker"`
	Vector  []float32 `json:"-"`
	Start   float64   `json:"start"`
	End     float64   `json:"end"`
}

// Validate checks the invariants a stored entry must satisfy.
func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry id is empty")
	}
	if !(e.Start < e.End) {
		return fmt.Errorf("entry %s: start %.3f must be before end %.3f", e.ID, e.Start, e.End)
	}
	if len(e.Vector) == 0 {
		return fmt.Errorf("entry %s: empty vector", e.ID)
	}
	for i, v := range e.Vector {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("entry %s: non-finite component at %d", e.ID, i)
		}
	}
	return nil
}

func (e Entry) clone() Entry {
	e.Vector = append([]float32(nil), e.Vector...)
	return e
}

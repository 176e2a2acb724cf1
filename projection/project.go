package projection

import (
	"fmt"

	"github.com/kbukum/voicemap/embedding"
)

// Point is one entry placed on the 2-D map.
type Point struct {
	ID      string  `json:"id"`
	Speaker string  `json:"speaker"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Project lays out entries on a plane, one point per entry in input order.
// It never modifies entries.
func Project(entries []embedding.Entry, cfg Config) ([]Point, error) {
	if len(entries) < MinPoints {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(entries), MinPoints)
	}

	coords, err := TSNE(embedding.Matrix(entries), cfg)
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(entries))
	for i, e := range entries {
		points[i] = Point{
			ID:      e.ID,
			Speaker: e.Speaker,
			X:       coords.At(i, 0),
			Y:       coords.At(i, 1),
			Start:   e.Start,
			End:     e.End,
		}
	}
	return points, nil
}

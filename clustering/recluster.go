package clustering

import (
	"fmt"

	"github.com/kbukum/voicemap/embedding"
)

// LabelPrefix starts every label Recluster assigns.
const LabelPrefix = "New_Speaker_"

// Label returns the speaker label for a zero-based cluster index.
func Label(cluster int) string {
	return fmt.Sprintf("%s%d", LabelPrefix, cluster+1)
}

// Recluster partitions entries into numClusters groups and returns the new
// speaker label for every entry id. It does not modify entries.
func Recluster(entries []embedding.Entry, numClusters int, cfg Config) (map[string]string, error) {
	if numClusters < 1 {
		return nil, ErrInvalidClusterCount
	}
	if numClusters > len(entries) {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(entries), numClusters)
	}

	labels, err := Spectral(embedding.Matrix(entries), numClusters, cfg)
	if err != nil {
		return nil, err
	}

	mapping := make(map[string]string, len(entries))
	for i, e := range entries {
		mapping[e.ID] = Label(labels[i])
	}
	return mapping, nil
}

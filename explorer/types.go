package explorer

import (
	"context"
	"io"

	"github.com/kbukum/voicemap/clustering"
	"github.com/kbukum/voicemap/projection"
)

// Clipper cuts a time range out of a stored recording and returns it as WAV.
type Clipper interface {
	Clip(ctx context.Context, key string, start, end float64) ([]byte, error)
}

// Config tunes the analysis engines.
type Config struct {
	Projection projection.Config `yaml:"projection" mapstructure:"projection"`
	Clustering clustering.Config `yaml:"clustering" mapstructure:"clustering"`
}

// ApplyDefaults fills zero fields of both engine configurations.
func (c *Config) ApplyDefaults() {
	c.Projection.ApplyDefaults()
	c.Clustering.ApplyDefaults()
}

// UploadInput is a recording received from a client.
type UploadInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Token string `json:"token" validate:"required"`
	// Size is the byte length of Body, or 0 if unknown.
	Size int64     `json:"size" validate:"gte=0"`
	Body io.Reader `json:"-" validate:"required"`
}

// UploadResult identifies the session created for an upload.
type UploadResult struct {
	SessionID string `json:"session_id"`
	MediaRef  string `json:"media_key"`
}

// SegmentInput asks for the voiceprint of one diarized segment.
type SegmentInput struct {
	ID      string  `json:"id" validate:"required,max=256"`
	Speaker string  `json:"speaker" validate:"max=256"`
	Start   float64 `json:"start" validate:"finite,gte=0"`
	End     float64 `json:"end" validate:"finite,gtfield=Start"`
}

// DefaultClusters is used when a recluster request names no cluster count.
const DefaultClusters = 2

const (
	projectionShortage = "Need at least 3 segments for t-SNE viz"
	clusteringShortage = "Not enough points"
)

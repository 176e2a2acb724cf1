package diarization

import (
	"context"
	"io"

	"github.com/kbukum/voicemap/provider"
)

// Media is an audio payload to upload.
type Media struct {
	// Name is the file name the provider reference is derived from.
	Name string
	Body io.Reader
	// Size is the byte length of Body, or 0 if unknown.
	Size int64
}

// Provider is the interface diarization backends implement. Every call
// carries the caller's API token; providers hold no credentials.
type Provider interface {
	provider.Provider

	// UploadMedia stores audio with the provider and returns its reference.
	UploadMedia(ctx context.Context, token string, media Media) (string, error)
	// Diarize runs speaker diarization on uploaded media and waits for the result.
	Diarize(ctx context.Context, token, mediaRef string) (*Result, error)
	// Voiceprint extracts a speaker embedding from uploaded media and waits for it.
	Voiceprint(ctx context.Context, token, mediaRef string) ([]float32, error)
}

// Registry selects a backend by name.
var Registry = provider.NewRegistry[Provider, Config]()

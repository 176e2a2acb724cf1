package session

import (
	"errors"
	"sync"
	"time"

	"github.com/kbukum/voicemap/embedding"
	"github.com/kbukum/voicemap/encryption"
)

// ErrNoUpload is returned when a session has no recorded audio yet.
var ErrNoUpload = errors.New("session has no uploaded audio")

// Audio describes the recording a session explores.
type Audio struct {
	// Key locates the raw file in storage.
	Key string `json:"key"`
	// Name is the original file name.
	Name string `json:"name"`
	// MediaRef is the provider-side reference, e.g. media://meeting.wav.
	MediaRef string `json:"media_ref"`
}

// Session is one exploration context: an uploaded recording, the provider
// credential used for it, and the embeddings extracted so far.
type Session struct {
	ID        string
	CreatedAt time.Time
	Store     *embedding.Store

	sealer *encryption.Sealer

	mu          sync.RWMutex
	audio       Audio
	hasAudio    bool
	sealedToken string
}

// RecordUpload attaches the uploaded audio and the provider token to the
// session. The token is kept sealed and bound to the session id.
func (s *Session) RecordUpload(audio Audio, token string) error {
	sealed, err := s.sealer.Seal(token, s.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = audio
	s.hasAudio = true
	s.sealedToken = sealed
	return nil
}

// Audio returns the recorded upload.
func (s *Session) Audio() (Audio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasAudio {
		return Audio{}, ErrNoUpload
	}
	return s.audio, nil
}

// Token returns the provider token recorded with the upload.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	sealed, ok := s.sealedToken, s.hasAudio
	s.mu.RUnlock()
	if !ok {
		return "", ErrNoUpload
	}
	return s.sealer.Open(sealed, s.ID)
}

package explorer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/kbukum/voicemap/diarization"
	"github.com/kbukum/voicemap/embedding"
	apperrors "github.com/kbukum/voicemap/errors"
	"github.com/kbukum/voicemap/logger"
	"github.com/kbukum/voicemap/media"
	"github.com/kbukum/voicemap/session"
	"github.com/kbukum/voicemap/storage"
	"github.com/kbukum/voicemap/validation"
)

func newClipID() string {
	return "temp-" + uuid.NewString() + ".wav"
}

// Upload stores a recording, hands it to the diarization provider and opens
// a new session for it. Each upload yields a fresh session; a failed upload
// leaves no session or stored file behind.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	sess := s.sessions.Create()
	var result *UploadResult
	err := s.run(ctx, "upload", sess.ID, func(ctx context.Context) error {
		key := storage.UploadKey(sess.ID, in.Name)
		body := &countingReader{r: in.Body}
		if err := s.store.Upload(ctx, key, body); err != nil {
			return err
		}

		ref, err := s.forward(ctx, key, in.Token, in.Size, body.n)
		if err != nil {
			if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				s.log.WithContext(ctx).Warn("failed to remove stored upload", logger.Fields("key", key, logger.FieldError, delErr.Error()))
			}
			return err
		}

		audio := session.Audio{Key: key, Name: in.Name, MediaRef: ref}
		if err := sess.RecordUpload(audio, in.Token); err != nil {
			return err
		}
		result = &UploadResult{SessionID: sess.ID, MediaRef: ref}
		return nil
	})
	if err != nil {
		s.sessions.Remove(sess.ID)
		return nil, err
	}

	s.metrics.RecordSessionCreated(ctx)
	return result, nil
}

// forward streams a stored recording to the provider.
func (s *Service) forward(ctx context.Context, key, token string, size, stored int64) (string, error) {
	rc, err := s.store.Download(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	if size <= 0 {
		size = stored
	}
	return s.gateway.UploadMedia(ctx, token, diarization.Media{
		Name: path.Base(key),
		Body: rc,
		Size: size,
	})
}

// Diarize runs speaker diarization over the session's recording and waits
// for the provider's result.
func (s *Service) Diarize(ctx context.Context, sessionID string) (*diarization.Result, error) {
	var result *diarization.Result
	err := s.run(ctx, "diarize", sessionID, func(ctx context.Context) error {
		sess, audio, err := s.session(sessionID)
		if err != nil {
			return err
		}
		token, err := sess.Token()
		if err != nil {
			return err
		}

		result, err = s.gateway.Diarize(ctx, token, audio.MediaRef)
		s.recordJob(ctx, "diarize", err)
		if err != nil {
			return err
		}
		s.log.Info("diarization completed", logger.Fields(
			logger.FieldSessionID, sessionID, "speakers", len(result.Speakers()), "turns", len(result.Turns)))
		return nil
	})
	return result, err
}

// ExtractSegment cuts a segment out of the session's recording, obtains its
// voiceprint and upserts it into the session's embeddings. The clip is
// never persisted.
func (s *Service) ExtractSegment(ctx context.Context, sessionID string, in SegmentInput) (*embedding.Entry, error) {
	var entry *embedding.Entry
	err := s.run(ctx, "extract_segment", sessionID, func(ctx context.Context) error {
		if err := validation.Validate(in); err != nil {
			return err
		}
		sess, audio, err := s.session(sessionID)
		if err != nil {
			return err
		}
		token, err := sess.Token()
		if err != nil {
			return err
		}

		clip, err := s.clipper.Clip(ctx, audio.Key, in.Start, in.End)
		if err != nil {
			if errors.Is(err, media.ErrEmptyClip) {
				return apperrors.NoSpeech(in.ID).WithCause(err)
			}
			return err
		}

		ref, err := s.gateway.UploadMedia(ctx, token, diarization.Media{
			Name: newClipID(),
			Body: bytes.NewReader(clip),
			Size: int64(len(clip)),
		})
		if err != nil {
			return err
		}

		vector, err := s.gateway.Voiceprint(ctx, token, ref)
		s.recordJob(ctx, "voiceprint", err)
		if err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeNoSpeech {
				appErr.WithDetail("segment_id", in.ID)
			}
			return err
		}

		e := embedding.Entry{ID: in.ID, Speaker: in.Speaker, Vector: vector, Start: in.Start, End: in.End}
		if err := upsert(sess, e); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	return entry, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

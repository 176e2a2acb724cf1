package explorer

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/voicemap/clustering"
	"github.com/kbukum/voicemap/embedding"
	apperrors "github.com/kbukum/voicemap/errors"
	"github.com/kbukum/voicemap/projection"
	"github.com/kbukum/voicemap/session"
)

// CreateSession registers a new empty session and returns its id.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	var id string
	err := s.run(ctx, "create_session", "", func(ctx context.Context) error {
		id = s.sessions.Create().ID
		s.metrics.RecordSessionCreated(ctx)
		return nil
	})
	return id, err
}

// RecordUpload attaches an uploaded recording and its provider token to a
// session.
func (s *Service) RecordUpload(ctx context.Context, sessionID string, audio session.Audio, token string) error {
	return s.run(ctx, "record_upload", sessionID, func(ctx context.Context) error {
		sess, err := s.sessions.Get(sessionID)
		if err != nil {
			return err
		}
		return sess.RecordUpload(audio, token)
	})
}

// UpsertEmbedding stores an entry in the session, replacing any entry with
// the same id in place.
func (s *Service) UpsertEmbedding(ctx context.Context, sessionID string, entry embedding.Entry) error {
	return s.run(ctx, "upsert_embedding", sessionID, func(ctx context.Context) error {
		sess, err := s.sessions.Get(sessionID)
		if err != nil {
			return err
		}
		return upsert(sess, entry)
	})
}

func upsert(sess *session.Session, entry embedding.Entry) error {
	if err := sess.Store.Upsert(entry); err != nil {
		if errors.Is(err, embedding.ErrDimensionMismatch) {
			return err
		}
		return apperrors.InvalidInput("entry", err.Error()).WithCause(err)
	}
	return nil
}

// Embeddings returns the session's entries in insertion order.
func (s *Service) Embeddings(ctx context.Context, sessionID string) ([]embedding.Entry, error) {
	var entries []embedding.Entry
	err := s.run(ctx, "embeddings", sessionID, func(ctx context.Context) error {
		sess, err := s.sessions.Get(sessionID)
		if err != nil {
			return err
		}
		entries = sess.Store.All()
		return nil
	})
	return entries, err
}

// Project lays out the session's entries on a plane. It needs at least
// projection.MinPoints entries and never modifies them.
func (s *Service) Project(ctx context.Context, sessionID string) ([]projection.Point, error) {
	var points []projection.Point
	err := s.run(ctx, "project", sessionID, func(ctx context.Context) error {
		sess, err := s.sessions.Get(sessionID)
		if err != nil {
			return err
		}
		entries := sess.Store.All()
		if len(entries) < projection.MinPoints {
			return apperrors.InsufficientData(projectionShortage, len(entries), projection.MinPoints)
		}
		points, err = projection.Project(entries, s.cfg.Projection)
		return err
	})
	return points, err
}

// Recluster partitions the session's entries into numClusters groups,
// writes the new labels back and returns them keyed by entry id. A
// numClusters of 0 selects DefaultClusters.
func (s *Service) Recluster(ctx context.Context, sessionID string, numClusters int) (map[string]string, error) {
	var mapping map[string]string
	err := s.run(ctx, "recluster", sessionID, func(ctx context.Context) error {
		sess, err := s.sessions.Get(sessionID)
		if err != nil {
			return err
		}
		if numClusters == 0 {
			numClusters = DefaultClusters
		}
		if numClusters < 1 {
			return apperrors.InvalidInput("num_clusters", fmt.Sprintf("must be at least 1, got %d", numClusters))
		}

		snap := sess.Store.Snapshot()
		if numClusters > len(snap.Entries) {
			return apperrors.InsufficientData(clusteringShortage, len(snap.Entries), numClusters)
		}
		mapping, err = clustering.Recluster(snap.Entries, numClusters, s.cfg.Clustering)
		if err != nil {
			return err
		}
		// Entries upserted while clustering ran keep the speaker they were written with.
		sess.Store.RelabelSnapshot(snap, mapping)
		return nil
	})
	return mapping, err
}

package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Download when no object is stored under the key.
var ErrNotFound = errors.New("storage: object not found")

// Storage defines the object operations voicemap needs.
type Storage interface {
	// Upload writes data from reader under key, replacing any existing object.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download returns a reader for the object under key.
	// The caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object under key. Returns nil if it does not exist.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}

// LocalPather is implemented by backends whose objects are plain files, so
// tools that need a path can read them in place.
type LocalPather interface {
	LocalPath(key string) (string, bool)
}

// UploadKey names a session's recording: "<sessionID>_<base name>".
func UploadKey(sessionID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload"
	}
	return sessionID + "_" + name
}

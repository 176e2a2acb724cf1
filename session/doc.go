// Package session keeps the in-memory registry of exploration sessions.
//
// A session is created when an audio file is uploaded and lives until the
// process exits. Nothing is evicted, so memory grows with the number of
// uploads; the service is meant for a single operator.
package session

// Package explorer is the voicemap application service. It ties together the
// session registry, recording storage, the remote diarization provider, the
// segment extractor, and the projection and clustering engines.
//
// Every operation takes the session id explicitly, runs inside a trace span,
// recovers panics and returns failures as *errors.AppError.
package explorer

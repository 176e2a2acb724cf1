// Package diarization defines the remote inference gateway voicemap talks to:
// media upload, speaker diarization jobs and voiceprint jobs.
//
// Backends register a provider.Factory in Registry; diarization/pyannote is
// the pyannote.ai cloud implementation.
package diarization

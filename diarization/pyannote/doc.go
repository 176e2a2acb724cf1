// Package pyannote implements diarization.Provider against the pyannote.ai
// cloud API.
//
// Media is uploaded through a presigned URL obtained from POST /media/input.
// Diarization and voiceprint requests create jobs that are polled on
// GET /jobs/{id} with the bounds configured in diarization.Config. The
// caller's API token is sent as a Bearer credential on every call except the
// presigned PUT.
package pyannote

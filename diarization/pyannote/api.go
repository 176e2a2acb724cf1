package pyannote

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	"github.com/kbukum/voicemap/diarization"
	"github.com/kbukum/voicemap/resilience"
)

type mediaInputRequest struct {
	URL string `json:"url"`
}

type mediaInputResponse struct {
	URL string `json:"url"`
}

type diarizeRequest struct {
	URL                 string `json:"url"`
	Model               string `json:"model,omitempty"`
	TurnLevelConfidence bool   `json:"turnLevelConfidence"`
}

type voiceprintRequest struct {
	URL string `json:"url"`
}

type jobResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

type jobStatusResponse struct {
	JobID  string          `json:"jobId"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
}

// jobOutput is the output document of a succeeded job.
type jobOutput json.RawMessage

func (r jobStatusResponse) toStatus() resilience.JobStatus[jobOutput] {
	switch r.Status {
	case "succeeded":
		return resilience.Succeeded(jobOutput(r.Output))
	case "failed", "canceled":
		return resilience.Failed[jobOutput](r.failureReason())
	default:
		return resilience.Running[jobOutput]()
	}
}

func (r jobStatusResponse) failureReason() string {
	var out struct {
		Error string `json:"error"`
	}
	if len(r.Output) > 0 && json.Unmarshal(r.Output, &out) == nil && out.Error != "" {
		return out.Error
	}
	return r.Status
}

func (o jobOutput) diarization() (*diarization.Result, error) {
	var doc struct {
		Diarization []diarization.Turn `json:"diarization"`
	}
	if len(o) > 0 {
		if err := json.Unmarshal(o, &doc); err != nil {
			return nil, fmt.Errorf("pyannote: decode diarization output: %w", err)
		}
	}
	return &diarization.Result{Turns: doc.Diarization, Raw: json.RawMessage(o)}, nil
}

func (o jobOutput) voiceprint() ([]float32, error) {
	var doc struct {
		Voiceprint string `json:"voiceprint"`
	}
	if err := json.Unmarshal(o, &doc); err != nil {
		return nil, fmt.Errorf("pyannote: decode voiceprint output: %w", err)
	}
	return DecodeVoiceprint(doc.Voiceprint)
}

// DecodeVoiceprint decodes a base64 string of little-endian float32 values.
func DecodeVoiceprint(encoded string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("pyannote: voiceprint is not base64: %w", err)
	}
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, fmt.Errorf("pyannote: voiceprint has %d bytes, want a non-zero multiple of 4", len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-.]`)
	dashRuns    = regexp.MustCompile(`-+`)
)

// SafeName replaces every character outside [A-Za-z0-9.-] with a dash and
// collapses dash runs.
func SafeName(name string) string {
	return dashRuns.ReplaceAllString(unsafeChars.ReplaceAllString(name, "-"), "-")
}

// MediaRef is the media:// reference the API stores name under.
func MediaRef(name string) string {
	return "media://" + SafeName(name)
}

package pyannote

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/voicemap/diarization"
	apperrors "github.com/kbukum/voicemap/errors"
	"github.com/kbukum/voicemap/resilience"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newTestProvider(t *testing.T, srv *httptest.Server) *Provider {
	t.Helper()
	p, err := New(diarization.Config{
		BaseURL:        srv.URL,
		DiarizePoll:    resilience.PollConfig{MaxAttempts: 3, Interval: time.Millisecond},
		VoiceprintPoll: resilience.PollConfig{MaxAttempts: 2, Interval: time.Millisecond},
	}, WithSleeper(noSleep))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func encodeFloats(vals ...float32) string {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"meeting.wav", "meeting.wav"},
		{"my file (1).wav", "my-file-1-.wav"},
		{"a__b  c.wav", "a-b-c.wav"},
		{"ünïcode.mp3", "-n-code.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SafeName(tt.in); got != tt.want {
				t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
	if got := MediaRef("a b.wav"); got != "media://a-b.wav" {
		t.Errorf("MediaRef = %q", got)
	}
}

func TestDecodeVoiceprint(t *testing.T) {
	got, err := DecodeVoiceprint(encodeFloats(1.5, -2, 0.25))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []float32{1.5, -2, 0.25}
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := DecodeVoiceprint(base64.StdEncoding.EncodeToString([]byte{1, 2, 3})); err == nil {
		t.Error("expected error for truncated payload")
	}
	if _, err := DecodeVoiceprint("not base64!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestUploadMedia(t *testing.T) {
	var mu sync.Mutex
	var putBody, putAuth, putType, presignAuth string
	var presignURL string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/media/input":
			var req mediaInputRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			mu.Lock()
			presignAuth = r.Header.Get("Authorization")
			mu.Unlock()
			if req.URL != "media://my-talk.wav" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad ref " + req.URL})
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"url": presignURL})
		case r.Method == http.MethodPut && r.URL.Path == "/bucket/upload":
			b, _ := io.ReadAll(r.Body)
			mu.Lock()
			putBody, putAuth, putType = string(b), r.Header.Get("Authorization"), r.Header.Get("Content-Type")
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	presignURL = srv.URL + "/bucket/upload"

	p := newTestProvider(t, srv)
	ref, err := p.UploadMedia(context.Background(), "tok", diarization.Media{
		Name: "my talk.wav", Body: strings.NewReader("RIFF"), Size: 4,
	})
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}
	if ref != "media://my-talk.wav" {
		t.Errorf("ref = %q", ref)
	}
	if presignAuth != "Bearer tok" {
		t.Errorf("presign auth = %q", presignAuth)
	}
	if putBody != "RIFF" || putType != "audio/wav" {
		t.Errorf("put body %q type %q", putBody, putType)
	}
	if putAuth != "" {
		t.Errorf("presigned PUT must not carry credentials, got %q", putAuth)
	}
}

func TestUploadMedia_PresignRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv).UploadMedia(context.Background(), "bad", diarization.Media{Name: "a.wav", Body: strings.NewReader("x")})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeUploadFailed {
		t.Fatalf("expected UPLOAD_FAILED, got %v", err)
	}
	if appErr.Details["provider_status"] != http.StatusUnauthorized {
		t.Errorf("unexpected details %v", appErr.Details)
	}
}

func TestUploadMedia_PresignNot201(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"url": "http://example.invalid"})
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv).UploadMedia(context.Background(), "tok", diarization.Media{Name: "a.wav", Body: strings.NewReader("x")})
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeUploadFailed {
		t.Fatalf("expected UPLOAD_FAILED, got %v", err)
	}
}

// jobServer answers /diarize and /voiceprint with job "j1" and reports the
// given statuses on successive GET /jobs/j1 calls.
func jobServer(t *testing.T, statuses []func(w http.ResponseWriter)) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && (r.URL.Path == "/diarize" || r.URL.Path == "/voiceprint"):
			writeJSON(w, http.StatusOK, map[string]string{"jobId": "j1", "status": "created"})
		case r.Method == http.MethodGet && r.URL.Path == "/jobs/j1":
			n := int(atomic.AddInt32(&polls, 1)) - 1
			if n >= len(statuses) {
				n = len(statuses) - 1
			}
			statuses[n](w)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv, &polls
}

func running(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"jobId": "j1", "status": "running"})
}

func TestDiarize_Succeeds(t *testing.T) {
	done := func(w http.ResponseWriter) {
		writeJSON(w, http.StatusOK, map[string]any{
			"jobId": "j1", "status": "succeeded",
			"output": map[string]any{"diarization": []map[string]any{
				{"speaker": "SPEAKER_00", "start": 0.5, "end": 2.0, "confidence": 0.9},
				{"speaker": "SPEAKER_01", "start": 2.0, "end": 3.5},
			}},
		})
	}
	srv, polls := jobServer(t, []func(http.ResponseWriter){running, done})
	defer srv.Close()

	res, err := newTestProvider(t, srv).Diarize(context.Background(), "tok", "media://a.wav")
	if err != nil {
		t.Fatalf("Diarize: %v", err)
	}
	if len(res.Turns) != 2 || res.Turns[1].Speaker != "SPEAKER_01" {
		t.Errorf("unexpected turns %+v", res.Turns)
	}
	if res.Turns[0].Confidence == nil || *res.Turns[0].Confidence != 0.9 {
		t.Errorf("confidence not decoded: %+v", res.Turns[0])
	}
	if len(res.Raw) == 0 {
		t.Error("raw output not kept")
	}
	if atomic.LoadInt32(polls) != 2 {
		t.Errorf("expected 2 polls, got %d", atomic.LoadInt32(polls))
	}
}

func TestDiarize_NonOKStatusKeepsPolling(t *testing.T) {
	flaky := func(w http.ResponseWriter) { w.WriteHeader(http.StatusBadGateway) }
	done := func(w http.ResponseWriter) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "succeeded", "output": map[string]any{"diarization": []any{}}})
	}
	srv, polls := jobServer(t, []func(http.ResponseWriter){flaky, flaky, done})
	defer srv.Close()

	if _, err := newTestProvider(t, srv).Diarize(context.Background(), "tok", "media://a.wav"); err != nil {
		t.Fatalf("Diarize: %v", err)
	}
	if atomic.LoadInt32(polls) != 3 {
		t.Errorf("expected 3 polls, got %d", atomic.LoadInt32(polls))
	}
}

func TestDiarize_Failed(t *testing.T) {
	failed := func(w http.ResponseWriter) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "failed", "output": map[string]string{"error": "bad audio"}})
	}
	srv, _ := jobServer(t, []func(http.ResponseWriter){failed})
	defer srv.Close()

	_, err := newTestProvider(t, srv).Diarize(context.Background(), "tok", "media://a.wav")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeRemoteJobFailed || appErr.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected REMOTE_JOB_FAILED/500, got %v", err)
	}
	if appErr.Message != "Diarization failed" || appErr.Details["reason"] != "bad audio" {
		t.Errorf("unexpected error %+v", appErr)
	}
}

func TestDiarize_TimesOut(t *testing.T) {
	srv, polls := jobServer(t, []func(http.ResponseWriter){running})
	defer srv.Close()

	_, err := newTestProvider(t, srv).Diarize(context.Background(), "tok", "media://a.wav")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeRemoteJobTimedOut || appErr.HTTPStatus != http.StatusGatewayTimeout {
		t.Fatalf("expected REMOTE_JOB_TIMED_OUT/504, got %v", err)
	}
	if atomic.LoadInt32(polls) != 3 {
		t.Errorf("expected exactly MaxAttempts polls, got %d", atomic.LoadInt32(polls))
	}
}

func TestDiarize_SubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte("out of credits"))
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv).Diarize(context.Background(), "tok", "media://a.wav")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.HTTPStatus != http.StatusBadRequest || appErr.Message != "out of credits" {
		t.Fatalf("expected submit rejection carrying provider text, got %v", err)
	}
}

func TestDiarize_TransportErrorSurfacesImmediately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	p := newTestProvider(t, srv)
	srv.Close()

	_, err := p.Diarize(context.Background(), "tok", "media://a.wav")
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeTransport {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
}

func TestVoiceprint(t *testing.T) {
	done := func(w http.ResponseWriter) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "succeeded", "output": map[string]string{"voiceprint": encodeFloats(0.5, 0.25)}})
	}
	srv, _ := jobServer(t, []func(http.ResponseWriter){done})
	defer srv.Close()

	var observed []resilience.JobState
	p := newTestProvider(t, srv)
	WithPollObserver(func(kind string, _ int, state resilience.JobState) {
		if kind == "voiceprint" {
			observed = append(observed, state)
		}
	})(p)

	vec, err := p.Voiceprint(context.Background(), "tok", "media://temp-x.wav")
	if err != nil {
		t.Fatalf("Voiceprint: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 || vec[1] != 0.25 {
		t.Errorf("unexpected vector %v", vec)
	}
	if len(observed) != 1 || observed[0] != resilience.JobSucceeded {
		t.Errorf("unexpected observations %v", observed)
	}
}

func TestVoiceprint_FailedIsNoSpeech(t *testing.T) {
	failed := func(w http.ResponseWriter) { writeJSON(w, http.StatusOK, map[string]string{"status": "failed"}) }
	srv, _ := jobServer(t, []func(http.ResponseWriter){failed})
	defer srv.Close()

	_, err := newTestProvider(t, srv).Voiceprint(context.Background(), "tok", "media://temp-x.wav")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeNoSpeech || appErr.Message != "No speech detected" {
		t.Fatalf("expected NO_SPEECH, got %v", err)
	}
}

func TestFactoryRegistered(t *testing.T) {
	p, err := diarization.Registry.Create(ProviderName, diarization.Config{BaseURL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name() != ProviderName {
		t.Errorf("unexpected provider %q", p.Name())
	}
}

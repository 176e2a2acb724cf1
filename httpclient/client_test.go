package httpclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voicemap/security"
	"github.com/kbukum/voicemap/security/tlstest"
)

func TestClient_Do_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/v1/jobs/123" {
			t.Errorf("expected /v1/jobs/123, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"running"}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/v1/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/jobs/123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() || !strings.Contains(string(resp.Body), "running") {
		t.Errorf("unexpected response %d %s", resp.StatusCode, resp.Body)
	}
}

func TestClient_Do_JSONBodyAndBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer header, got %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["url"] != "media://a.wav" {
			t.Errorf("unexpected body %v", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/diarize",
		Body:   map[string]string{"url": "media://a.wav"},
		Auth:   BearerAuth("secret"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_NoAuthOverridesDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no Authorization header, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "audio/wav" {
			t.Errorf("expected audio/wav, got %q", got)
		}
		if r.ContentLength != 4 {
			t.Errorf("expected content length 4, got %d", r.ContentLength)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != "RIFF" {
			t.Errorf("unexpected body %q", b)
		}
	}))
	defer srv.Close()

	c, _ := New(Config{Auth: BearerAuth("default")})
	_, err := c.Do(context.Background(), Request{
		Method:        http.MethodPut,
		Path:          srv.URL + "/presigned",
		Headers:       map[string]string{"Content-Type": "audio/wav"},
		Body:          io.NopCloser(strings.NewReader("RIFF")),
		ContentLength: 4,
		Auth:          NoAuth(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, KindAuth},
		{"not found", http.StatusNotFound, KindNotFound},
		{"rate limited", http.StatusTooManyRequests, KindRateLimit},
		{"bad request", http.StatusBadRequest, KindRejected},
		{"server", http.StatusBadGateway, KindServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			c, _ := New(Config{BaseURL: srv.URL})
			resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
			var he *Error
			if !errors.As(err, &he) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if he.Kind != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, he.Kind)
			}
			if resp == nil || string(resp.Body) != "nope" {
				t.Error("expected the response to accompany the error")
			}
			if StatusOf(err) != tt.status {
				t.Errorf("StatusOf = %d, want %d", StatusOf(err), tt.status)
			}
		})
	}
}

func TestClient_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, _ := New(Config{BaseURL: url, Timeout: time.Second})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if StatusOf(err) != 0 {
		t.Errorf("expected no status for transport error")
	}
}

func TestTypedHelpers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer per-request" {
			t.Errorf("expected per-request credentials, got %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"jobId":"j-1"}`))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, Auth: BearerAuth("client")})
	type job struct {
		JobID string `json:"jobId"`
	}
	resp, err := Post[job](c, context.Background(), "/voiceprint", map[string]string{"url": "x"},
		WithRequestAuth(BearerAuth("per-request")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated || resp.Data.JobID != "j-1" {
		t.Errorf("unexpected typed response %+v", resp)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != defaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	cfg.RateLimit.Rate = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative rate")
	}
}

func TestClient_PrivateCA(t *testing.T) {
	certs := tlstest.Generate(t)
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{certs.Leaf}}
	srv.StartTLS()
	defer srv.Close()

	untrusted, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = untrusted.Do(context.Background(), Request{Method: http.MethodGet, Path: "/test"})
	if !IsTransport(err) {
		t.Errorf("expected transport error without the CA, got %v", err)
	}

	trusted, err := New(Config{BaseURL: srv.URL, TLS: &security.TLSConfig{CAFile: certs.CAFile}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := trusted.Do(context.Background(), Request{Method: http.MethodGet, Path: "/test"})
	if err != nil {
		t.Fatalf("expected success with the CA, got %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func TestNew_InvalidTLS(t *testing.T) {
	if _, err := New(Config{TLS: &security.TLSConfig{CertFile: "only-cert.pem"}}); err == nil {
		t.Error("expected error for cert without key")
	}
}

package pyannote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kbukum/voicemap/diarization"
	apperrors "github.com/kbukum/voicemap/errors"
	"github.com/kbukum/voicemap/httpclient"
	"github.com/kbukum/voicemap/logger"
	"github.com/kbukum/voicemap/resilience"
)

// ProviderName is the registered name for the pyannote.ai provider.
const ProviderName = "pyannote"

func init() {
	diarization.Registry.RegisterFactory(ProviderName, Factory)
}

// Factory creates a Provider from diarization configuration.
func Factory(cfg diarization.Config) (diarization.Provider, error) {
	return New(cfg)
}

// Option customizes a Provider.
type Option func(*Provider)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Provider) { p.httpOpts = append(p.httpOpts, httpclient.WithHTTPClient(hc)) }
}

// WithSleeper replaces the wait between job polls.
func WithSleeper(s resilience.Sleeper) Option {
	return func(p *Provider) { p.sleep = s }
}

// WithPollObserver is called after every job status fetch.
func WithPollObserver(fn func(kind string, attempt int, state resilience.JobState)) Option {
	return func(p *Provider) { p.observe = fn }
}

// Provider implements diarization.Provider against the pyannote.ai API.
type Provider struct {
	cfg      diarization.Config
	client   *httpclient.Client
	log      *logger.Logger
	sleep    resilience.Sleeper
	observe  func(kind string, attempt int, state resilience.JobState)
	httpOpts []httpclient.Option
}

// New creates a pyannote.ai provider.
func New(cfg diarization.Config, opts ...Option) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{cfg: cfg, log: logger.Get(ProviderName)}
	for _, opt := range opts {
		opt(p)
	}

	client, err := httpclient.New(httpclient.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		TLS:       &cfg.TLS,
	}, p.httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("pyannote: %w", err)
	}
	p.client = client
	return p, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the API host answers at all. Credentials are
// per request, so an unauthorized answer still counts as available.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/test"})
	return err == nil || !httpclient.IsTransport(err)
}

// UploadMedia reserves a media:// reference, then PUTs the audio to the
// presigned URL the API hands back.
func (p *Provider) UploadMedia(ctx context.Context, token string, media diarization.Media) (string, error) {
	ref := MediaRef(media.Name)

	presign, err := httpclient.Post[mediaInputResponse](p.client, ctx, "/media/input",
		mediaInputRequest{URL: ref}, httpclient.WithRequestAuth(httpclient.BearerAuth(token)))
	if err != nil {
		return "", p.uploadError(err)
	}
	if presign.StatusCode != http.StatusCreated || presign.Data.URL == "" {
		return "", apperrors.UploadFailed(presign.StatusCode, "missing presigned url")
	}

	_, err = p.client.Do(ctx, httpclient.Request{
		Method:        http.MethodPut,
		Path:          presign.Data.URL,
		Headers:       map[string]string{"Content-Type": "audio/wav"},
		Body:          media.Body,
		ContentLength: media.Size,
		Auth:          httpclient.NoAuth(),
	})
	if err != nil {
		return "", p.uploadError(err)
	}

	p.log.Debug("media uploaded", logger.Fields("media_ref", ref, "bytes", media.Size))
	return ref, nil
}

// Diarize submits a diarization job and waits for its output.
func (p *Provider) Diarize(ctx context.Context, token, mediaRef string) (*diarization.Result, error) {
	jobID, err := p.submit(ctx, token, "/diarize", diarizeRequest{
		URL:                 mediaRef,
		Model:               p.cfg.Model,
		TurnLevelConfidence: true,
	})
	if err != nil {
		return nil, err
	}

	out, err := resilience.Poll(ctx, p.pollConfig("diarize", p.cfg.DiarizePoll),
		func(ctx context.Context) (resilience.JobStatus[jobOutput], error) {
			return p.jobStatus(ctx, token, jobID)
		})
	if err != nil {
		return nil, p.jobError(jobID, p.cfg.DiarizePoll.MaxAttempts, err)
	}
	return out.diarization()
}

// Voiceprint submits a voiceprint job and decodes the resulting embedding.
// A failed job means the clip held no usable speech.
func (p *Provider) Voiceprint(ctx context.Context, token, mediaRef string) ([]float32, error) {
	jobID, err := p.submit(ctx, token, "/voiceprint", voiceprintRequest{URL: mediaRef})
	if err != nil {
		return nil, err
	}

	out, err := resilience.Poll(ctx, p.pollConfig("voiceprint", p.cfg.VoiceprintPoll),
		func(ctx context.Context) (resilience.JobStatus[jobOutput], error) {
			return p.jobStatus(ctx, token, jobID)
		})
	if err != nil {
		var failed *resilience.JobFailedError
		if errors.As(err, &failed) {
			return nil, apperrors.NoSpeech("").WithDetail("job_id", jobID).WithCause(err)
		}
		return nil, p.jobError(jobID, p.cfg.VoiceprintPoll.MaxAttempts, err)
	}
	return out.voiceprint()
}

func (p *Provider) submit(ctx context.Context, token, path string, body any) (string, error) {
	resp, err := httpclient.Post[jobResponse](p.client, ctx, path, body,
		httpclient.WithRequestAuth(httpclient.BearerAuth(token)))
	if err != nil {
		if httpclient.IsTransport(err) {
			return "", apperrors.Transport(ProviderName, err)
		}
		if status := httpclient.StatusOf(err); status > 0 {
			return "", apperrors.SubmitRejected(status, errorBody(err))
		}
		return "", apperrors.Internal(err)
	}
	if resp.StatusCode != http.StatusOK || resp.Data.JobID == "" {
		return "", apperrors.SubmitRejected(resp.StatusCode, "missing job id")
	}

	p.log.Info("job submitted", logger.Fields(logger.FieldJobID, resp.Data.JobID, logger.FieldOperation, path))
	return resp.Data.JobID, nil
}

// jobStatus fetches one job snapshot. A non-2xx answer is read as "not done
// yet" so a flaky status endpoint does not fail a job that may still finish.
func (p *Provider) jobStatus(ctx context.Context, token, jobID string) (resilience.JobStatus[jobOutput], error) {
	resp, err := httpclient.Get[jobStatusResponse](p.client, ctx, "/jobs/"+jobID,
		httpclient.WithRequestAuth(httpclient.BearerAuth(token)))
	if err != nil {
		if httpclient.IsTransport(err) {
			return resilience.JobStatus[jobOutput]{}, apperrors.Transport(ProviderName, err)
		}
		if status := httpclient.StatusOf(err); status > 0 {
			p.log.Warn("job status request rejected", logger.Fields(logger.FieldJobID, jobID, logger.FieldStatus, status))
			return resilience.Running[jobOutput](), nil
		}
		return resilience.JobStatus[jobOutput]{}, apperrors.Internal(err)
	}
	return resp.Data.toStatus(), nil
}

func (p *Provider) pollConfig(kind string, cfg resilience.PollConfig) resilience.PollConfig {
	if p.sleep != nil {
		cfg.Sleep = p.sleep
	}
	cfg.OnAttempt = func(attempt int, state resilience.JobState) {
		p.log.Debug("job polled", logger.Fields(logger.FieldOperation, kind, logger.FieldAttempt, attempt, logger.FieldStatus, state.String()))
		if p.observe != nil {
			p.observe(kind, attempt, state)
		}
	}
	return cfg
}

func (p *Provider) jobError(jobID string, attempts int, err error) error {
	var failed *resilience.JobFailedError
	switch {
	case errors.As(err, &failed):
		return apperrors.RemoteJobFailed(jobID, "Diarization failed").WithDetail("reason", failed.Reason)
	case errors.Is(err, resilience.ErrJobTimedOut):
		return apperrors.RemoteJobTimedOut(jobID, attempts)
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Transport(ProviderName, err)
	}
	return apperrors.Internal(err)
}

func (p *Provider) uploadError(err error) error {
	if httpclient.IsTransport(err) {
		return apperrors.Transport(ProviderName, err)
	}
	if status := httpclient.StatusOf(err); status > 0 {
		return apperrors.UploadFailed(status, errorBody(err))
	}
	return apperrors.Internal(err)
}

func errorBody(err error) string {
	var he *httpclient.Error
	if errors.As(err, &he) && len(he.Body) > 0 {
		return string(he.Body)
	}
	if he != nil {
		return "HTTP " + strconv.Itoa(he.StatusCode)
	}
	return err.Error()
}

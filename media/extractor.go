package media

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kbukum/voicemap/logger"
	"github.com/kbukum/voicemap/process"
	"github.com/kbukum/voicemap/storage"
)

// ErrEmptyClip is returned when ffmpeg produced no audio.
var ErrEmptyClip = errors.New("media: extracted clip is empty")

// Config configures the ffmpeg extractor.
type Config struct {
	// FFmpegPath is the ffmpeg binary. Defaults to "ffmpeg" on PATH.
	FFmpegPath string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	// Timeout bounds one extraction.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// TempDir holds recordings fetched from remote storage. Defaults to os.TempDir.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

// Extractor cuts segments from recordings kept in storage.
type Extractor struct {
	cfg    Config
	store  storage.Storage
	runner process.Runner
	log    *logger.Logger
}

// NewExtractor creates an Extractor reading recordings from store. A nil
// runner uses a process.Executor bounded by cfg.Timeout.
func NewExtractor(cfg Config, store storage.Storage, runner process.Runner) *Extractor {
	cfg.ApplyDefaults()
	if runner == nil {
		runner = process.NewExecutor(process.Config{Timeout: cfg.Timeout})
	}
	return &Extractor{cfg: cfg, store: store, runner: runner, log: logger.Get("media")}
}

// Available reports whether the ffmpeg binary can be found.
func (e *Extractor) Available() error {
	if _, err := exec.LookPath(e.cfg.FFmpegPath); err != nil {
		return fmt.Errorf("media: %s not found: %w", e.cfg.FFmpegPath, err)
	}
	return nil
}

// Clip returns [start, end) seconds of the recording under key as WAV bytes,
// keeping the source's channels and sample rate.
func (e *Extractor) Clip(ctx context.Context, key string, start, end float64) ([]byte, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("media: invalid range [%v, %v)", start, end)
	}

	src, cleanup, err := e.source(ctx, key)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	res, err := e.runner.Run(ctx, process.Command{
		Binary: e.cfg.FFmpegPath,
		Args:   clipArgs(src, start, end),
	})
	if err != nil {
		return nil, fmt.Errorf("media: ffmpeg: %w", err)
	}
	if audioBytes(res.Stdout) == 0 {
		return nil, ErrEmptyClip
	}

	e.log.Debug("segment extracted", logger.Fields(
		"key", key, "start", start, "end", end, "bytes", len(res.Stdout), logger.FieldDuration, res.Duration.String()))
	return res.Stdout, nil
}

func clipArgs(src string, start, end float64) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-ss", seconds(start), "-to", seconds(end),
		"-i", src,
		"-vn", "-f", "wav", "pipe:1",
	}
}

// audioBytes returns the size of the sample data in a WAV stream. ffmpeg
// writes the header even for an empty range, and a piped stream carries no
// reliable chunk sizes, so everything after the data chunk header counts.
// Output that is not RIFF/WAVE is measured whole.
func audioBytes(b []byte) int {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return len(b)
	}
	for off := 12; off+8 <= len(b); {
		if string(b[off:off+4]) == "data" {
			return len(b) - off - 8
		}
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		off += 8 + size + size%2
	}
	return 0
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// source returns a local path for key, downloading to a temp file when the
// backend is not filesystem based.
func (e *Extractor) source(ctx context.Context, key string) (string, func(), error) {
	if lp, ok := e.store.(storage.LocalPather); ok {
		if p, ok := lp.LocalPath(key); ok {
			if _, err := os.Stat(p); err != nil {
				return "", nil, fmt.Errorf("media: %w: %s", storage.ErrNotFound, key)
			}
			return p, func() {}, nil
		}
	}

	rc, err := e.store.Download(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("media: fetch recording: %w", err)
	}
	defer func() { _ = rc.Close() }()

	f, err := os.CreateTemp(e.cfg.TempDir, "voicemap-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, fmt.Errorf("media: create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := io.Copy(f, rc); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("media: copy recording: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("media: close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}

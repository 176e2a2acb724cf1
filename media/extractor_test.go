package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/kbukum/voicemap/process"
	"github.com/kbukum/voicemap/storage"
	"github.com/kbukum/voicemap/storage/local"
)

// memStorage is a non-filesystem backend.
type memStorage struct {
	objects map[string][]byte
}

func (m *memStorage) Upload(_ context.Context, key string, r io.Reader) error {
	b, err := io.ReadAll(r)
	m.objects[key] = b
	return err
}

func (m *memStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

type recordingRunner struct {
	cmd     process.Command
	srcData []byte
	out     []byte
	err     error
}

func (r *recordingRunner) Run(_ context.Context, cmd process.Command) (*process.Result, error) {
	r.cmd = cmd
	for i, a := range cmd.Args {
		if a == "-i" && i+1 < len(cmd.Args) {
			r.srcData, _ = os.ReadFile(cmd.Args[i+1])
		}
	}
	if r.err != nil {
		return &process.Result{ExitCode: 1}, r.err
	}
	return &process.Result{Stdout: r.out}, nil
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestClip_LocalStorage(t *testing.T) {
	st, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	if err := st.Upload(context.Background(), "sid_a.mp3", strings.NewReader("MP3DATA")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	runner := &recordingRunner{out: []byte("RIFFWAVE")}
	e := NewExtractor(Config{}, st, runner)

	clip, err := e.Clip(context.Background(), "sid_a.mp3", 1.5, 3.25)
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if string(clip) != "RIFFWAVE" {
		t.Errorf("unexpected clip %q", clip)
	}
	if runner.cmd.Binary != "ffmpeg" {
		t.Errorf("binary = %q", runner.cmd.Binary)
	}
	if got := argAfter(runner.cmd.Args, "-ss"); got != "1.500" {
		t.Errorf("-ss = %q", got)
	}
	if got := argAfter(runner.cmd.Args, "-to"); got != "3.250" {
		t.Errorf("-to = %q", got)
	}
	if got := argAfter(runner.cmd.Args, "-f"); got != "wav" {
		t.Errorf("-f = %q", got)
	}
	if p, _ := st.LocalPath("sid_a.mp3"); argAfter(runner.cmd.Args, "-i") != p {
		t.Errorf("expected in-place read of %q, got %q", p, argAfter(runner.cmd.Args, "-i"))
	}
}

func TestClip_RemoteStorageUsesTempFile(t *testing.T) {
	st := &memStorage{objects: map[string][]byte{"sid_a.wav": []byte("WAVDATA")}}
	runner := &recordingRunner{out: []byte("RIFF")}
	e := NewExtractor(Config{TempDir: t.TempDir()}, st, runner)

	if _, err := e.Clip(context.Background(), "sid_a.wav", 0, 1); err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if string(runner.srcData) != "WAVDATA" {
		t.Errorf("ffmpeg saw %q", runner.srcData)
	}
	src := argAfter(runner.cmd.Args, "-i")
	if !strings.HasSuffix(src, ".wav") {
		t.Errorf("temp file should keep extension, got %q", src)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("temp file %q not removed", src)
	}
}

func TestClip_Errors(t *testing.T) {
	st := &memStorage{objects: map[string][]byte{"k.wav": []byte("x")}}

	tests := []struct {
		name       string
		key        string
		start, end float64
		runner     *recordingRunner
		wantErr    error
	}{
		{"inverted range", "k.wav", 2, 1, &recordingRunner{}, nil},
		{"negative start", "k.wav", -1, 1, &recordingRunner{}, nil},
		{"missing recording", "other.wav", 0, 1, &recordingRunner{}, storage.ErrNotFound},
		{"ffmpeg failure", "k.wav", 0, 1, &recordingRunner{err: errors.New("exit 1")}, nil},
		{"empty output", "k.wav", 0, 1, &recordingRunner{}, ErrEmptyClip},
		{"header only", "k.wav", 0, 1, &recordingRunner{out: wav(0)}, ErrEmptyClip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(Config{TempDir: t.TempDir()}, st, tt.runner)
			_, err := e.Clip(context.Background(), tt.key, tt.start, tt.end)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// wav builds a stream shaped like ffmpeg's piped WAV output: fmt and LIST
// chunks, then a data chunk whose size field is left unset.
func wav(samples int) []byte {
	var b bytes.Buffer
	chunk := func(id string, body []byte) {
		b.WriteString(id)
		_ = binary.Write(&b, binary.LittleEndian, uint32(len(body)))
		b.Write(body)
	}
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(0xFFFFFFFF))
	b.WriteString("WAVE")
	chunk("fmt ", make([]byte, 16))
	chunk("LIST", []byte("INFOISFT\x0e\x00\x00\x00Lavf61.7.100\x00\x00"))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(0xFFFFFFFF))
	b.Write(make([]byte, samples*2))
	return b.Bytes()
}

func TestAudioBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want int
	}{
		{"nothing", nil, 0},
		{"header only", wav(0), 0},
		{"samples", wav(160), 320},
		{"not wav", []byte("RIFFWAVE"), 8},
		{"truncated header", wav(0)[:30], 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := audioBytes(tt.in); got != tt.want {
				t.Errorf("audioBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClip_WAVWithSamples(t *testing.T) {
	st := &memStorage{objects: map[string][]byte{"k.wav": []byte("x")}}
	e := NewExtractor(Config{TempDir: t.TempDir()}, st, &recordingRunner{out: wav(16)})
	clip, err := e.Clip(context.Background(), "k.wav", 0, 1)
	if err != nil {
		t.Fatalf("Clip failed: %v", err)
	}
	if len(clip) != len(wav(16)) {
		t.Errorf("expected the whole stream, got %d bytes", len(clip))
	}
}

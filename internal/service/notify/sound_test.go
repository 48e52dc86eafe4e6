package notify

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

type recordingPlayer struct {
	format string
	data   []byte
}

func (p *recordingPlayer) Play(_ context.Context, format string, r io.ReadCloser) error {
	defer r.Close()
	p.format = format
	b, err := io.ReadAll(r)
	p.data = b
	return err
}

func TestNotifyPlaysFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ding.WAV")
	if err := os.WriteFile(p, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	ply := &recordingPlayer{}
	n := NewSoundNotifier(zap.NewNop().Sugar(), p, ply)

	if err := n.Notify(context.Background()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if ply.format != "wav" || string(ply.data) != "RIFF" {
		t.Errorf("played %q %q", ply.format, ply.data)
	}
}

func TestNotifyErrors(t *testing.T) {
	ply := &recordingPlayer{}
	n := NewSoundNotifier(zap.NewNop().Sugar(), filepath.Join(t.TempDir(), "missing.mp3"), ply)
	if err := n.Notify(context.Background()); err == nil {
		t.Error("missing file should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx); err == nil {
		t.Error("cancelled context should fail")
	}
	if ply.format != "" {
		t.Error("player must not be called")
	}
}

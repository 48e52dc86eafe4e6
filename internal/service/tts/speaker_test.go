package tts

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeSynth struct {
	err error
}

func (f fakeSynth) Synthesize(_ context.Context, text string) (Audio, error) {
	if f.err != nil {
		return Audio{}, f.err
	}
	return Audio{Data: []byte(text), Format: "mp3"}, nil
}

// blockingPlayer «играет», пока не отменят ctx или не закроют release.
type blockingPlayer struct {
	release chan struct{}
	err     error
}

func (p *blockingPlayer) Play(ctx context.Context, _ string, r io.ReadCloser) error {
	defer r.Close()
	if p.err != nil {
		return p.err
	}
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type events struct {
	mu     sync.Mutex
	log    []string
	ended  chan struct{}
	failed error
}

func newEvents() *events { return &events{ended: make(chan struct{}, 4)} }

func (e *events) handler() Handler {
	return Handler{
		OnStart: func() { e.add("start") },
		OnEnd:   func() { e.add("end"); e.ended <- struct{}{} },
		OnError: func(err error) {
			e.mu.Lock()
			e.failed = err
			e.mu.Unlock()
			e.add("error")
			e.ended <- struct{}{}
		},
	}
}

func (e *events) add(s string) {
	e.mu.Lock()
	e.log = append(e.log, s)
	e.mu.Unlock()
}

func (e *events) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

func waitEnd(t *testing.T, e *events) {
	t.Helper()
	select {
	case <-e.ended:
	case <-time.After(2 * time.Second):
		t.Fatal("terminal event not delivered")
	}
}

func TestSpeakerLifecycle(t *testing.T) {
	p := &blockingPlayer{release: make(chan struct{})}
	s := NewSpeaker(fakeSynth{}, p, zap.NewNop().Sugar())
	ev := newEvents()

	if err := s.Speak(context.Background(), "hello", ev.handler()); err != nil {
		t.Fatal(err)
	}
	close(p.release)
	waitEnd(t, ev)

	got := ev.snapshot()
	if len(got) != 2 || got[0] != "start" || got[1] != "end" {
		t.Errorf("events = %v, want [start end]", got)
	}
}

func TestSpeakerCancelEndsWithoutError(t *testing.T) {
	p := &blockingPlayer{release: make(chan struct{})}
	s := NewSpeaker(fakeSynth{}, p, zap.NewNop().Sugar())
	ev := newEvents()

	if err := s.Speak(context.Background(), "long text", ev.handler()); err != nil {
		t.Fatal(err)
	}
	s.Cancel()
	waitEnd(t, ev)

	for _, e := range ev.snapshot() {
		if e == "error" {
			t.Errorf("cancel reported as error: %v", ev.snapshot())
		}
	}
}

func TestSpeakerRequestContextDoesNotStopPlayback(t *testing.T) {
	p := &blockingPlayer{release: make(chan struct{})}
	s := NewSpeaker(fakeSynth{}, p, zap.NewNop().Sugar())
	ev := newEvents()

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Speak(ctx, "text", ev.handler()); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case <-ev.ended:
		t.Fatal("utterance ended together with the caller context")
	case <-time.After(50 * time.Millisecond):
	}
	close(p.release)
	waitEnd(t, ev)
}

func TestSpeakerSynthesisError(t *testing.T) {
	boom := errors.New("quota exceeded")
	s := NewSpeaker(fakeSynth{err: boom}, &blockingPlayer{}, zap.NewNop().Sugar())
	ev := newEvents()

	if err := s.Speak(context.Background(), "text", ev.handler()); err != nil {
		t.Fatal(err)
	}
	waitEnd(t, ev)
	if !errors.Is(ev.failed, boom) {
		t.Errorf("OnError got %v, want %v", ev.failed, boom)
	}
	if got := ev.snapshot(); len(got) != 1 || got[0] != "error" {
		t.Errorf("events = %v, want [error]", got)
	}
}

func TestSpeakerNewUtteranceInterruptsPrevious(t *testing.T) {
	p := &blockingPlayer{release: make(chan struct{})}
	s := NewSpeaker(fakeSynth{}, p, zap.NewNop().Sugar())
	first, second := newEvents(), newEvents()

	if err := s.Speak(context.Background(), "one", first.handler()); err != nil {
		t.Fatal(err)
	}
	if err := s.Speak(context.Background(), "two", second.handler()); err != nil {
		t.Fatal(err)
	}
	// первая реплика завершена ещё до возврата из второго Speak
	waitEnd(t, first)

	close(p.release)
	waitEnd(t, second)
}

func TestSpeakerRejectsEmptyText(t *testing.T) {
	s := NewSpeaker(fakeSynth{}, &blockingPlayer{}, zap.NewNop().Sugar())
	if err := s.Speak(context.Background(), "  ", Handler{}); err == nil {
		t.Error("Speak(empty) error = nil")
	}
}

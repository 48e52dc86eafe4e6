package engine

import (
	"PromptCraft/internal/history"
	"PromptCraft/internal/service/stt"
	"PromptCraft/internal/service/tts"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend отвечает reply (или err) и запоминает все запросы.
// Если gate не nil, вызов ждёт его закрытия, а entered получает сигнал о входе.
type fakeBackend struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	entered chan struct{}
	gate    chan struct{}
}

func (b *fakeBackend) Generate(ctx context.Context, p string) (string, error) {
	b.mu.Lock()
	b.prompts = append(b.prompts, p)
	reply, err, entered, gate := b.reply, b.err, b.entered, b.gate
	b.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return reply, err
}

func (b *fakeBackend) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.prompts...)
}

func (b *fakeBackend) blocking() {
	b.entered = make(chan struct{}, 1)
	b.gate = make(chan struct{})
}

// fakeSpeaker держит handler последней реплики; Cancel, как и настоящий, приводит к OnEnd.
type fakeSpeaker struct {
	mu       sync.Mutex
	text     string
	h        *tts.Handler
	speakErr error
	cancels  int
}

func (s *fakeSpeaker) Speak(_ context.Context, text string, h tts.Handler) error {
	if s.speakErr != nil {
		return s.speakErr
	}
	s.mu.Lock()
	s.text = text
	s.h = &h
	s.mu.Unlock()
	return nil
}

func (s *fakeSpeaker) Cancel() {
	s.mu.Lock()
	s.cancels++
	h := s.h
	s.h = nil
	s.mu.Unlock()
	if h != nil && h.OnEnd != nil {
		h.OnEnd()
	}
}

func (s *fakeSpeaker) handler() tts.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.h
}

type fakeRecognizer struct {
	mu       sync.Mutex
	h        *stt.Handler
	startErr error
	stops    int
}

func (r *fakeRecognizer) Start(_ context.Context, h stt.Handler) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.mu.Lock()
	r.h = &h
	r.mu.Unlock()
	return nil
}

func (r *fakeRecognizer) Stop() error {
	r.mu.Lock()
	r.stops++
	h := r.h
	r.h = nil
	r.mu.Unlock()
	if h != nil && h.OnEnd != nil {
		h.OnEnd()
	}
	return nil
}

func (r *fakeRecognizer) handler() stt.Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.h
}

type fakeClipboard struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (c *fakeClipboard) WriteText(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, s)
	return c.err
}

type fakeRecorder struct {
	mu   sync.Mutex
	recs []history.Record
}

func (r *fakeRecorder) Add(_ context.Context, rec history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return nil
}

type fakeNotifier struct{ ch chan struct{} }

func (n *fakeNotifier) Notify(context.Context) error {
	n.ch <- struct{}{}
	return nil
}

type field struct{ s string }

func (f *field) Text() string     { return f.s }
func (f *field) SetText(s string) { f.s = s }

var errBackend = errors.New("backend down")

// eventually ждёт выполнения условия, иначе валит тест.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

package engine

import (
	"PromptCraft/internal/prompt"
	"PromptCraft/internal/service/stt"
	"context"
	"errors"
	"testing"
)

func TestReadAloudLifecycle(t *testing.T) {
	sp := &fakeSpeaker{}
	e := New(&fakeBackend{}, WithSpeaker(sp))
	e.st.FinalAnswer = "the answer"

	if err := e.ReadAloud(context.Background()); err != nil {
		t.Fatalf("ReadAloud: %v", err)
	}
	if sp.text != "the answer" {
		t.Errorf("spoken text = %q", sp.text)
	}
	if got := e.State().PendingAction; got != prompt.ActionReadAloud {
		t.Errorf("PendingAction = %q, want read aloud", got)
	}

	sp.handler().OnStart()
	st := e.State()
	if !st.Speaking || st.PendingAction != prompt.ActionReadAloud {
		t.Errorf("after start: speaking=%v pending=%q", st.Speaking, st.PendingAction)
	}

	sp.handler().OnEnd()
	st = e.State()
	if st.Speaking || st.PendingAction != "" {
		t.Errorf("after end: speaking=%v pending=%q", st.Speaking, st.PendingAction)
	}
	if st.LastActionError != "" {
		t.Errorf("LastActionError = %q", st.LastActionError)
	}
}

func TestReadAloudToggleCancels(t *testing.T) {
	sp := &fakeSpeaker{}
	e := New(&fakeBackend{}, WithSpeaker(sp))
	e.st.FinalAnswer = "the answer"

	if err := e.ReadAloud(context.Background()); err != nil {
		t.Fatal(err)
	}
	sp.handler().OnStart()
	if err := e.ReadAloud(context.Background()); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if sp.cancels != 1 {
		t.Errorf("cancels = %d, want 1", sp.cancels)
	}
	st := e.State()
	if st.Speaking || st.PendingAction != "" || st.LastActionError != "" {
		t.Errorf("cancel must end speech silently: %+v", st)
	}
}

func TestReadAloudError(t *testing.T) {
	sp := &fakeSpeaker{}
	e := New(&fakeBackend{}, WithSpeaker(sp))
	e.st.FinalAnswer = "the answer"

	if err := e.ReadAloud(context.Background()); err != nil {
		t.Fatal(err)
	}
	h := sp.handler()
	h.OnStart()
	h.OnError(errors.New("audio device busy"))
	st := e.State()
	if st.Speaking || st.PendingAction != "" {
		t.Errorf("after error: speaking=%v pending=%q", st.Speaking, st.PendingAction)
	}
	if st.LastActionError != MsgSpeechFailed {
		t.Errorf("LastActionError = %q", st.LastActionError)
	}

	// Поздние события прошлой реплики ничего не меняют.
	e.st.LastActionError = ""
	h.OnError(errors.New("late"))
	if e.State().LastActionError != "" {
		t.Error("stale utterance event must be ignored")
	}
}

func TestReadAloudGuards(t *testing.T) {
	e := New(&fakeBackend{})
	before := e.State()
	if err := e.ReadAloud(context.Background()); !errors.Is(err, ErrNothingToProcess) {
		t.Errorf("empty answer without speaker: %v", err)
	}
	if e.State() != before {
		t.Errorf("empty answer without speaker must be a no-op: %+v", e.State())
	}

	e.st.FinalAnswer = "x"
	if err := e.ReadAloud(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("no speaker: %v", err)
	}
	if got := e.State().LastActionError; got != MsgSpeechUnsupported {
		t.Errorf("LastActionError = %q", got)
	}

	sp := &fakeSpeaker{}
	e = New(&fakeBackend{}, WithSpeaker(sp))
	if err := e.ReadAloud(context.Background()); !errors.Is(err, ErrNothingToProcess) {
		t.Errorf("empty answer: %v", err)
	}
	if e.State() != (State{DetailLevel: prompt.DetailMedium, CanSpeak: true}) {
		t.Errorf("empty answer must be a no-op: %+v", e.State())
	}

	e.st.FinalAnswer = "x"
	e.st.PendingAction = prompt.ActionSummarize
	if err := e.ReadAloud(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("busy slot: %v", err)
	}

	e.st.PendingAction = ""
	sp.speakErr = errors.New("no voice")
	if err := e.ReadAloud(context.Background()); err == nil {
		t.Error("Speak failure must be returned")
	}
	st := e.State()
	if st.PendingAction != "" || st.LastActionError != MsgSpeechFailed {
		t.Errorf("after Speak failure: %+v", st)
	}
}

func TestListenAppendsTranscript(t *testing.T) {
	rec := &fakeRecognizer{}
	e := New(&fakeBackend{}, WithRecognizer(rec))
	e.SetUserInput("write a")

	if err := e.Listen(context.Background(), nil); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if !e.State().Listening {
		t.Fatal("Listening must be true after start")
	}
	h := rec.handler()
	h.OnResult("haiku about rain")
	st := e.State()
	if st.UserInput != "write a haiku about rain" {
		t.Errorf("UserInput = %q", st.UserInput)
	}
	if st.Listening {
		t.Error("Listening must be cleared on result")
	}
	h.OnEnd()
	if e.State().Listening {
		t.Error("Listening must stay false")
	}
}

func TestListenCustomTarget(t *testing.T) {
	rec := &fakeRecognizer{}
	e := New(&fakeBackend{}, WithRecognizer(rec))
	f := &field{}

	if err := e.Listen(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	rec.handler().OnResult("hello")
	if f.s != "hello" {
		t.Errorf("empty target must get transcript without a leading space, got %q", f.s)
	}
}

func TestListenError(t *testing.T) {
	rec := &fakeRecognizer{}
	e := New(&fakeBackend{}, WithRecognizer(rec))
	if err := e.Listen(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	h := rec.handler()
	h.OnError(stt.ErrCodeNoSpeech)
	h.OnEnd()
	st := e.State()
	if st.Listening {
		t.Error("Listening must be cleared on error")
	}
	if st.LastSynthesisError != "Speech recognition error: no-speech" {
		t.Errorf("LastSynthesisError = %q", st.LastSynthesisError)
	}
}

func TestListenToggleStops(t *testing.T) {
	rec := &fakeRecognizer{}
	e := New(&fakeBackend{}, WithRecognizer(rec))
	if err := e.Listen(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if err := e.Listen(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if rec.stops != 1 {
		t.Errorf("stops = %d, want 1", rec.stops)
	}
	st := e.State()
	if st.Listening || st.LastSynthesisError != "" {
		t.Errorf("stop must end silently: %+v", st)
	}
}

func TestListenGuards(t *testing.T) {
	e := New(&fakeBackend{})
	if err := e.Listen(context.Background(), nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("no recognizer: %v", err)
	}
	if got := e.State().LastSynthesisError; got != MsgRecognitionUnsupport {
		t.Errorf("LastSynthesisError = %q", got)
	}

	rec := &fakeRecognizer{startErr: &stt.Error{Code: stt.ErrCodeAudioCapture, Err: errors.New("no wav")}}
	e = New(&fakeBackend{}, WithRecognizer(rec))
	if err := e.Listen(context.Background(), nil); err == nil {
		t.Fatal("start failure must be returned")
	}
	st := e.State()
	if st.Listening || st.LastSynthesisError != "Speech recognition error: audio-capture" {
		t.Errorf("after start failure: %+v", st)
	}
}

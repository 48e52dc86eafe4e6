package engine

import (
	"PromptCraft/internal/ai"
	"PromptCraft/internal/history"
	"PromptCraft/internal/prompt"
	"PromptCraft/internal/service/clipboard"
	"PromptCraft/internal/service/stt"
	"PromptCraft/internal/service/tts"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrEmptyInput       = errors.New("engine: empty input")
	ErrBusy             = errors.New("engine: operation already in progress")
	ErrNothingToProcess = errors.New("engine: nothing to process")
	ErrUnsupported      = errors.New("engine: capability is not available")
	ErrUnknownAction    = errors.New("engine: unknown action")
)

const DefaultCopiedResetDelay = 2 * time.Second

// Recorder журнал успешных генераций (history.Store).
type Recorder interface {
	Add(ctx context.Context, rec history.Record) error
}

// Notifier сигнал о готовом ответе (notify.SoundNotifier).
type Notifier interface {
	Notify(ctx context.Context) error
}

// TextField поле, в которое дописывается распознанная речь.
type TextField interface {
	Text() string
	SetText(string)
}

// Engine контроллер синтеза промптов: владеет состоянием сессии и ходит в бэкенд и к возможностям.
// Мьютекс никогда не держится во время вызова бэкенда, Speaker или Recognizer.
type Engine struct {
	backend     ai.Client
	logger      *zap.SugaredLogger
	speaker     tts.Speaker
	recognizer  stt.Recognizer
	clip        clipboard.Writer
	recorder    Recorder
	notifier    Notifier
	copiedDelay time.Duration

	mu sync.Mutex
	st State
	// Номер синтеза; follow-up, начатый до нового синтеза, не должен показать свой ответ рядом с новым промптом.
	synthGen  uint64
	utterSeq  uint64
	utterance uint64 // активная реплика, 0 — нет
	listenSeq uint64
	listening uint64 // активная сессия распознавания, 0 — нет
	copyGen   uint64
	copyTimer *time.Timer
	closed    bool

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

type Option func(*Engine)

func WithLogger(l *zap.SugaredLogger) Option { return func(e *Engine) { e.logger = l } }

func WithSpeaker(s tts.Speaker) Option { return func(e *Engine) { e.speaker = s } }

func WithRecognizer(r stt.Recognizer) Option { return func(e *Engine) { e.recognizer = r } }

func WithClipboard(w clipboard.Writer) Option { return func(e *Engine) { e.clip = w } }

func WithRecorder(r Recorder) Option { return func(e *Engine) { e.recorder = r } }

func WithNotifier(n Notifier) Option { return func(e *Engine) { e.notifier = n } }

func WithCopiedResetDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.copiedDelay = d
		}
	}
}

// WithDetailLevel начальный уровень детализации (по умолчанию medium).
func WithDetailLevel(l prompt.DetailLevel) Option {
	return func(e *Engine) { e.st.DetailLevel = prompt.ParseDetailLevel(string(l)) }
}

func New(backend ai.Client, opts ...Option) *Engine {
	e := &Engine{
		backend:     backend,
		logger:      zap.NewNop().Sugar(),
		copiedDelay: DefaultCopiedResetDelay,
		st:          State{DetailLevel: prompt.DetailMedium},
		subs:        make(map[chan struct{}]struct{}),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// State возвращает копию текущего состояния.
func (e *Engine) State() State {
	e.mu.Lock()
	st := e.st
	e.mu.Unlock()
	st.CanSpeak = e.speaker != nil
	st.CanListen = e.recognizer != nil
	return st
}

func (e *Engine) SetUserInput(s string) {
	e.update(func(st *State) { st.UserInput = s })
}

func (e *Engine) SetDetailLevel(l prompt.DetailLevel) {
	e.update(func(st *State) { st.DetailLevel = prompt.ParseDetailLevel(string(l)) })
}

// Synthesize строит мета-промпт по идее и уровню детализации и сохраняет ответ бэкенда в synthesizedPrompt.
// Пока идёт синтез, повторный вызов отклоняется с ErrBusy.
func (e *Engine) Synthesize(ctx context.Context, input string, level prompt.DetailLevel) error {
	level = prompt.ParseDetailLevel(string(level))

	e.mu.Lock()
	if e.st.PendingSynthesis {
		e.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(input) == "" {
		e.st.LastSynthesisError = MsgEmptyInput
		e.mu.Unlock()
		e.broadcast()
		return ErrEmptyInput
	}
	e.st.PendingSynthesis = true
	e.st.UserInput = input
	e.st.DetailLevel = level
	e.st.FinalAnswer = ""
	e.st.AnswerTitle = ""
	e.st.LastSynthesisError = ""
	e.st.LastActionError = ""
	e.synthGen++
	e.mu.Unlock()
	e.broadcast()

	defer e.update(func(st *State) { st.PendingSynthesis = false })

	e.logger.Infow("Синтез промпта...", "level", level, "chars", len(input))
	start := time.Now()
	out, err := e.backend.Generate(ctx, prompt.BuildMetaPrompt(input, level))
	if err != nil {
		e.logger.Errorw("Синтез промпта не удался", "level", level, "error", err, "duration", time.Since(start).String())
		e.update(func(st *State) { st.LastSynthesisError = MsgSynthesisFailed })
		return fmt.Errorf("synthesize: %w", err)
	}
	e.logger.Infow("Промпт синтезирован", "level", level, "duration", time.Since(start).String())

	e.update(func(st *State) { st.SynthesizedPrompt = out })
	e.completed(ctx, history.Record{Kind: history.KindPrompt, DetailLevel: string(level), Input: input, Output: out})
	return nil
}

func (e *Engine) GetAnswer(ctx context.Context) error  { return e.runFollowUp(ctx, prompt.GetAnswer) }
func (e *Engine) Brainstorm(ctx context.Context) error { return e.runFollowUp(ctx, prompt.Brainstorm) }
func (e *Engine) Summarize(ctx context.Context) error  { return e.runFollowUp(ctx, prompt.Summarize) }
func (e *Engine) Rephrase(ctx context.Context) error   { return e.runFollowUp(ctx, prompt.Rephrase) }

// RunFollowUp запускает follow-up по идентификатору ("get answer", "brainstorm", "summarize", "rephrase").
func (e *Engine) RunFollowUp(ctx context.Context, id string) error {
	a, ok := prompt.LookupAction(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	return e.runFollowUp(ctx, a)
}

func (e *Engine) runFollowUp(ctx context.Context, a prompt.Action) error {
	e.mu.Lock()
	src := e.source(a.Source)
	if strings.TrimSpace(src) == "" {
		e.mu.Unlock()
		return ErrNothingToProcess
	}
	if e.st.PendingAction != "" {
		e.mu.Unlock()
		return ErrBusy
	}
	e.st.PendingAction = a.ID
	e.st.LastActionError = ""
	gen := e.synthGen
	e.mu.Unlock()
	e.broadcast()

	defer e.update(func(st *State) {
		if st.PendingAction == a.ID {
			st.PendingAction = ""
		}
	})

	e.logger.Infow("Follow-up...", "action", a.ID)
	start := time.Now()
	out, err := e.backend.Generate(ctx, a.Build(src))

	e.mu.Lock()
	if gen != e.synthGen {
		e.mu.Unlock()
		e.logger.Infow("Follow-up устарел: промпт пересинтезирован, ответ отброшен", "action", a.ID)
		return nil
	}
	if err != nil {
		e.st.LastActionError = actionFailed(a.ID)
		e.mu.Unlock()
		e.broadcast()
		e.logger.Errorw("Follow-up не удался", "action", a.ID, "error", err, "duration", time.Since(start).String())
		return fmt.Errorf("%s: %w", a.ID, err)
	}
	e.st.FinalAnswer = out
	e.st.AnswerTitle = a.Title
	e.mu.Unlock()
	e.broadcast()
	e.logger.Infow("Follow-up готов", "action", a.ID, "duration", time.Since(start).String())

	e.completed(ctx, history.Record{Kind: string(a.ID), Input: src, Output: out, Title: a.Title})
	return nil
}

func (e *Engine) source(s prompt.Source) string {
	switch s {
	case prompt.SourceSynthesizedPrompt:
		return e.st.SynthesizedPrompt
	case prompt.SourceFinalAnswer:
		return e.st.FinalAnswer
	}
	return ""
}

// completed пишет историю и подаёт звуковой сигнал. Ошибки только логируются.
func (e *Engine) completed(ctx context.Context, rec history.Record) {
	if e.recorder != nil {
		if err := e.recorder.Add(context.WithoutCancel(ctx), rec); err != nil {
			e.logger.Warnw("Не удалось записать историю", "kind", rec.Kind, "error", err)
		}
	}
	if e.notifier != nil {
		go func() {
			if err := e.notifier.Notify(context.Background()); err != nil {
				e.logger.Debugw("Звуковое уведомление не проиграно", "error", err)
			}
		}()
	}
}

// CopyToClipboard копирует текст и поднимает флаг copied на copiedDelay. Повторное копирование продлевает окно.
// Ошибки буфера обмена не показываются пользователю.
func (e *Engine) CopyToClipboard(text string) {
	if text == "" {
		return
	}
	if e.clip == nil {
		e.logger.Warnw("Буфер обмена не подключён")
	} else if err := e.clip.WriteText(text); err != nil {
		e.logger.Warnw("Не удалось скопировать в буфер обмена", "error", err)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.st.Copied = true
	e.copyGen++
	gen := e.copyGen
	if e.copyTimer != nil {
		e.copyTimer.Stop()
	}
	e.copyTimer = time.AfterFunc(e.copiedDelay, func() {
		e.update(func(st *State) {
			if e.copyGen == gen {
				st.Copied = false
			}
		})
	})
	e.mu.Unlock()
	e.broadcast()
}

// Subscribe канал уведомлений об изменении состояния. Уведомления схлопываются:
// после сигнала нужно перечитать State(). Канал закрывается на Close или отписке.
func (e *Engine) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	e.subMu.Lock()
	if e.subs == nil {
		e.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	e.subs[ch] = struct{}{}
	e.subMu.Unlock()
	return ch, func() {
		e.subMu.Lock()
		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
		e.subMu.Unlock()
	}
}

// Close завершает сессию: прерывает речь и распознавание, закрывает подписки.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.copyTimer != nil {
		e.copyTimer.Stop()
	}
	e.mu.Unlock()

	if e.speaker != nil {
		e.speaker.Cancel()
	}
	var err error
	if e.recognizer != nil {
		err = e.recognizer.Stop()
	}

	e.subMu.Lock()
	for ch := range e.subs {
		close(ch)
	}
	e.subs = nil
	e.subMu.Unlock()
	return err
}

// update меняет состояние под мьютексом и оповещает подписчиков.
func (e *Engine) update(fn func(st *State)) {
	e.mu.Lock()
	fn(&e.st)
	e.mu.Unlock()
	e.broadcast()
}

func (e *Engine) broadcast() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

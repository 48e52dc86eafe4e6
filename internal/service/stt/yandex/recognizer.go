package yandex

import (
	"PromptCraft/internal/config"
	"PromptCraft/internal/service/stt"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultFinalTimeout = 5 * time.Second

// Recognizer одна сессия распознавания поверх Client. Звук из источника стримится
// в псевдореалтайме чанками ChunkMS, первый финальный результат завершает сессию.
type Recognizer struct {
	cfg          config.YandexSTTConfig
	open         func() (stt.AudioSource, error)
	logger       *zap.SugaredLogger
	finalTimeout time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRecognizer open вызывается на каждую сессию и отдаёт свежий источник звука.
func NewRecognizer(cfg config.YandexSTTConfig, open func() (stt.AudioSource, error), logger *zap.SugaredLogger) *Recognizer {
	return &Recognizer{cfg: cfg, open: open, logger: logger, finalTimeout: defaultFinalTimeout}
}

// Start поднимает соединение и возвращается сразу; события приходят в h из фоновой горутины.
// Активная сессия перед этим останавливается.
func (r *Recognizer) Start(ctx context.Context, h stt.Handler) error {
	_ = r.Stop()

	if r.open == nil {
		return &stt.Error{Code: stt.ErrCodeAudioCapture, Err: stt.ErrNoAudioSource}
	}
	src, err := r.open()
	if err != nil {
		return &stt.Error{Code: stt.ErrCodeAudioCapture, Err: err}
	}
	client, err := New(r.cfg)
	if err != nil {
		_ = src.Close()
		return &stt.Error{Code: stt.ErrCodeNetwork, Err: err}
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := client.Start(sctx); err != nil {
		cancel()
		_ = src.Close()
		return &stt.Error{Code: stt.ErrCodeNetwork, Err: err}
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.cancel, r.done = cancel, done
	r.mu.Unlock()

	go r.run(sctx, cancel, client, src, h, done)
	return nil
}

// Stop прерывает сессию и ждёт, пока она отдаст OnEnd.
func (r *Recognizer) Stop() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (r *Recognizer) run(ctx context.Context, cancel context.CancelFunc, client *Client, src stt.AudioSource, h stt.Handler, done chan struct{}) {
	defer close(done)
	defer func() {
		cancel()
		_ = client.Close()
		_ = src.Close()
		if h.OnEnd != nil {
			h.OnEnd()
		}
	}()

	fail := func(code string) {
		if h.OnError != nil {
			h.OnError(code)
		}
	}

	streamErr := make(chan error, 1)
	go func() { streamErr <- r.stream(ctx, client, src) }()

	waitStream := streamErr
	var timeout <-chan time.Time
	results := client.Results()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-waitStream:
			waitStream = nil
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Warnw("Yandex STT: ошибка передачи аудио", "error", err)
				fail(stt.ErrCodeAudioCapture)
				return
			}
			// Звук кончился, ждём финальную гипотезу.
			timer := time.NewTimer(r.finalTimeout)
			defer timer.Stop()
			timeout = timer.C
		case res, ok := <-results:
			if !ok {
				if ctx.Err() == nil {
					r.logger.Warnw("Yandex STT: соединение закрыто без финального результата")
					fail(stt.ErrCodeNetwork)
				}
				return
			}
			if !res.Final {
				continue
			}
			text := strings.TrimSpace(res.Text)
			if text == "" {
				fail(stt.ErrCodeNoSpeech)
				return
			}
			r.logger.Infow("Yandex STT: распознано", "chars", len(text))
			if h.OnResult != nil {
				h.OnResult(text)
			}
			return
		case <-timeout:
			fail(stt.ErrCodeNoSpeech)
			return
		}
	}
}

func (r *Recognizer) stream(ctx context.Context, client *Client, src stt.AudioSource) error {
	chunkMS := r.cfg.ChunkMS
	if chunkMS <= 0 {
		chunkMS = 50
	}
	n := src.SampleRate() * chunkMS / 1000
	if n <= 0 {
		n = 800
	}
	buf := make([]int16, n)
	ticker := time.NewTicker(time.Duration(chunkMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		k, err := src.ReadPCM16(buf)
		if k > 0 {
			if werr := client.WritePCM16(buf[:k]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

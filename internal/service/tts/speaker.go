package tts

import (
	"PromptCraft/internal/service/tts/player"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PlaybackSpeaker реализует Speaker поверх провайдера синтеза и локального плеера.
type PlaybackSpeaker struct {
	synth  Synthesizer
	player player.Player
	logger *zap.SugaredLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSpeaker(s Synthesizer, p player.Player, logger *zap.SugaredLogger) *PlaybackSpeaker {
	return &PlaybackSpeaker{synth: s, player: p, logger: logger}
}

func (s *PlaybackSpeaker) Speak(ctx context.Context, text string, h Handler) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("tts: empty text")
	}
	// Реплика живёт дольше вызвавшего запроса: прервать её можно только через Cancel.
	uctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	s.mu.Lock()
	prevCancel, prevDone := s.cancel, s.done
	s.cancel, s.done = cancel, done
	s.mu.Unlock()
	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	go s.run(uctx, text, h, done)
	return nil
}

func (s *PlaybackSpeaker) run(ctx context.Context, text string, h Handler, done chan struct{}) {
	defer close(done)

	started := time.Now()
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		s.finish(ctx, h, err)
		return
	}
	s.logger.Infow("TTS synthesized", "bytes", len(audio.Data), "format", audio.Format, "took", time.Since(started).String())

	if h.OnStart != nil {
		h.OnStart()
	}
	err = s.player.Play(ctx, audio.Format, io.NopCloser(bytes.NewReader(audio.Data)))
	s.finish(ctx, h, err)
}

// finish сообщает терминальное событие. Отмена — это штатное завершение, а не ошибка.
func (s *PlaybackSpeaker) finish(ctx context.Context, h Handler, err error) {
	if err != nil && ctx.Err() == nil {
		s.logger.Warnw("TTS playback failed", "error", err)
		if h.OnError != nil {
			h.OnError(err)
		}
		return
	}
	if h.OnEnd != nil {
		h.OnEnd()
	}
}

// Cancel прерывает текущую реплику и дожидается её завершения.
func (s *PlaybackSpeaker) Cancel() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

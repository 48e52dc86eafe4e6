package tts

import "context"

// Audio синтезированная речь целиком.
type Audio struct {
	Data   []byte
	Format string // mp3|wav
}

// Synthesizer абстракция TTS-провайдера: превращает текст в аудио, но не проигрывает его.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// Handler события жизненного цикла одной реплики. Любое поле может быть nil.
type Handler struct {
	OnStart func()
	OnEnd   func()
	OnError func(err error)
}

// Speaker — возможность «прочитать вслух». Одновременно звучит не больше одной реплики:
// новый Speak прерывает текущую. Speak не блокирует, события приходят из другой горутины.
type Speaker interface {
	Speak(ctx context.Context, text string, h Handler) error
	Cancel()
}

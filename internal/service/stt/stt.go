package stt

import (
	"context"
	"errors"
)

// Коды ошибок распознавания (по образцу Web Speech API).
const (
	ErrCodeNoSpeech     = "no-speech"
	ErrCodeAudioCapture = "audio-capture"
	ErrCodeNetwork      = "network"
)

// Handler события одной сессии распознавания. Любое поле может быть nil.
// OnEnd приходит всегда последним, в том числе после OnResult и OnError.
type Handler struct {
	OnResult func(transcript string)
	OnError  func(code string)
	OnEnd    func()
}

// Recognizer — возможность «слушать»: одна сессия, один финальный результат, фиксированная локаль.
// Start не блокирует, события приходят из другой горутины.
type Recognizer interface {
	Start(ctx context.Context, h Handler) error
	Stop() error
}

// AudioSource источник PCM16 mono. На конце данных ReadPCM16 возвращает io.EOF.
type AudioSource interface {
	ReadPCM16(buf []int16) (int, error)
	SampleRate() int
	Close() error
}

var ErrNoAudioSource = errors.New("stt: audio source is not configured")

// Error ошибка запуска сессии с кодом для пользователя.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string { return e.Code + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Code возвращает код ошибки распознавания; для ошибок без кода — network.
func Code(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeNetwork
}

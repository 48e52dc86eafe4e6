package engine

import (
	"PromptCraft/internal/prompt"
	"PromptCraft/internal/service/stt"
	"PromptCraft/internal/service/tts"
	"context"
	"fmt"
	"strings"
)

// ReadAloud переключает озвучку finalAnswer: повторный вызов во время речи её прерывает.
// Без ответа ничего не делает, даже если синтез речи недоступен.
// Реплика занимает слот pendingAction до терминального события.
func (e *Engine) ReadAloud(ctx context.Context) error {
	e.mu.Lock()
	if e.utterance != 0 {
		e.mu.Unlock()
		e.speaker.Cancel()
		return nil
	}
	text := e.st.FinalAnswer
	if strings.TrimSpace(text) == "" {
		e.mu.Unlock()
		return ErrNothingToProcess
	}
	if e.speaker == nil {
		e.st.LastActionError = MsgSpeechUnsupported
		e.mu.Unlock()
		e.broadcast()
		return ErrUnsupported
	}
	if e.st.PendingAction != "" {
		e.mu.Unlock()
		return ErrBusy
	}
	e.utterSeq++
	id := e.utterSeq
	e.utterance = id
	e.st.PendingAction = prompt.ActionReadAloud
	e.st.LastActionError = ""
	e.mu.Unlock()
	e.broadcast()

	h := tts.Handler{
		OnStart: func() {
			e.update(func(st *State) {
				if e.utterance == id {
					st.Speaking = true
					st.PendingAction = prompt.ActionReadAloud
				}
			})
		},
		OnEnd: func() { e.endUtterance(id, "") },
		OnError: func(err error) {
			e.logger.Warnw("Ошибка синтеза речи", "error", err)
			e.endUtterance(id, MsgSpeechFailed)
		},
	}
	if err := e.speaker.Speak(ctx, text, h); err != nil {
		e.logger.Warnw("Не удалось начать озвучку", "error", err)
		e.endUtterance(id, MsgSpeechFailed)
		return fmt.Errorf("read aloud: %w", err)
	}
	return nil
}

func (e *Engine) endUtterance(id uint64, msg string) {
	e.update(func(st *State) {
		if e.utterance != id {
			return
		}
		e.utterance = 0
		st.Speaking = false
		if st.PendingAction == prompt.ActionReadAloud {
			st.PendingAction = ""
		}
		if msg != "" {
			st.LastActionError = msg
		}
	})
}

// Listen переключает распознавание речи. Распознанный текст дописывается в target через пробел.
// Ошибки распознавания показываются в lastSynthesisError, рядом с полем ввода.
func (e *Engine) Listen(ctx context.Context, target TextField) error {
	e.mu.Lock()
	if e.recognizer == nil {
		e.st.LastSynthesisError = MsgRecognitionUnsupport
		e.mu.Unlock()
		e.broadcast()
		return ErrUnsupported
	}
	if e.listening != 0 {
		e.mu.Unlock()
		return e.recognizer.Stop()
	}
	if target == nil {
		target = e.UserInputField()
	}
	e.listenSeq++
	id := e.listenSeq
	e.listening = id
	e.st.Listening = true
	e.mu.Unlock()
	e.broadcast()

	h := stt.Handler{
		OnResult: func(transcript string) {
			if !e.isListening(id) {
				return
			}
			target.SetText(appendTranscript(target.Text(), transcript))
			e.endListening(id, "")
		},
		OnError: func(code string) {
			e.logger.Warnw("Ошибка распознавания речи", "code", code)
			e.endListening(id, code)
		},
		OnEnd: func() { e.endListening(id, "") },
	}
	if err := e.recognizer.Start(ctx, h); err != nil {
		e.logger.Warnw("Не удалось начать распознавание", "error", err)
		e.endListening(id, stt.Code(err))
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func (e *Engine) isListening(id uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listening == id
}

func (e *Engine) endListening(id uint64, code string) {
	e.update(func(st *State) {
		if e.listening != id {
			return
		}
		e.listening = 0
		st.Listening = false
		if code != "" {
			st.LastSynthesisError = recognitionFailed(code)
		}
	})
}

func appendTranscript(cur, transcript string) string {
	if cur == "" {
		return transcript
	}
	return cur + " " + transcript
}

// UserInputField поле userInput как цель для Listen.
func (e *Engine) UserInputField() TextField { return userInputField{e} }

type userInputField struct{ e *Engine }

func (f userInputField) Text() string {
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	return f.e.st.UserInput
}

func (f userInputField) SetText(s string) { f.e.SetUserInput(s) }

package session

import (
	"PromptCraft/internal/ai"
	"PromptCraft/internal/config"
	"PromptCraft/internal/engine"
	"PromptCraft/internal/history"
	"PromptCraft/internal/prompt"
	"PromptCraft/internal/service/clipboard"
	"PromptCraft/internal/service/notify"
	"PromptCraft/internal/service/stt"
	"PromptCraft/internal/service/stt/audio"
	sttyandex "PromptCraft/internal/service/stt/yandex"
	"PromptCraft/internal/service/tts"
	"PromptCraft/internal/service/tts/gemini"
	"PromptCraft/internal/service/tts/google"
	"PromptCraft/internal/service/tts/player"
	ttsyandex "PromptCraft/internal/service/tts/yandex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Session собирает контроллер и его возможности из конфигурации.
type Session struct {
	Engine  *engine.Engine
	History *history.Store // nil, если история выключена
}

func New(cfg *config.Config, logger *zap.SugaredLogger) (*Session, error) {
	backend, err := ai.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithDetailLevel(prompt.ParseDetailLevel(cfg.DetailLevel)),
		engine.WithCopiedResetDelay(cfg.CopiedResetDelay),
	}

	sp, err := newSpeaker(cfg, logger)
	if err != nil {
		return nil, err
	}
	if sp != nil {
		opts = append(opts, engine.WithSpeaker(sp))
	}

	rec, err := newRecognizer(cfg, logger)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		opts = append(opts, engine.WithRecognizer(rec))
	}

	if cfg.ClipboardEnabled {
		if !clipboard.Available() {
			logger.Warnw("Буфер обмена недоступен: не найдена утилита копирования")
		}
		opts = append(opts, engine.WithClipboard(clipboard.System{}))
	}

	if p := strings.TrimSpace(cfg.NotificationSoundPath); p != "" {
		opts = append(opts, engine.WithNotifier(notify.NewSoundNotifier(logger, p, player.New())))
	}

	s := &Session{}
	if p := strings.TrimSpace(cfg.HistoryDB); p != "" {
		st, err := history.Open(p)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		s.History = st
		opts = append(opts, engine.WithRecorder(st))
	}

	s.Engine = engine.New(backend, opts...)
	logger.Infow("Session ready",
		"llm", cfg.LLM.Provider,
		"tts", serviceName(cfg.TTSService),
		"stt", serviceName(cfg.STTService),
		"history", s.History != nil,
	)
	return s, nil
}

// Close завершает сессию: прерывает речь, закрывает историю.
func (s *Session) Close() error {
	err := s.Engine.Close()
	if s.History != nil {
		err = errors.Join(err, s.History.Close())
	}
	return err
}

func serviceName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "none"
	}
	return s
}

func newSpeaker(cfg *config.Config, logger *zap.SugaredLogger) (tts.Speaker, error) {
	synth, p, err := NewSynthesizer(cfg, logger)
	if err != nil || synth == nil {
		return nil, err
	}
	return tts.NewSpeaker(synth, p, logger), nil
}

// NewSynthesizer провайдер синтеза и плеер по TTS_SERVICE; для none возвращает nil.
// Для yandex громкость задаётся на стороне плеера, для google/gemini — у провайдера (VolumeGainDb).
func NewSynthesizer(cfg *config.Config, logger *zap.SugaredLogger) (tts.Synthesizer, player.Player, error) {
	switch serviceName(cfg.TTSService) {
	case "none":
		return nil, nil, nil
	case "yandex", "yc", "speechkit":
		return ttsyandex.New(cfg.YandexTTS), player.NewWithVolume(player.VolumeFromPercent(cfg.YandexTTS.Volume)), nil
	case "google":
		return google.New(cfg.GoogleTTS, logger), player.New(), nil
	case "gemini", "google-gemini":
		return gemini.New(cfg.GeminiTTS, logger), player.New(), nil
	}
	return nil, nil, fmt.Errorf("unknown tts service: %q", cfg.TTSService)
}

func newRecognizer(cfg *config.Config, logger *zap.SugaredLogger) (stt.Recognizer, error) {
	switch serviceName(cfg.STTService) {
	case "none":
		return nil, nil
	case "yandex":
		wav, sr := cfg.YandexSTT.WAVPath, cfg.YandexSTT.SampleRate
		open := func() (stt.AudioSource, error) { return audio.OpenWAV(wav, sr) }
		return sttyandex.NewRecognizer(cfg.YandexSTT, open, logger), nil
	default:
		return nil, fmt.Errorf("unknown stt service: %q", cfg.STTService)
	}
}

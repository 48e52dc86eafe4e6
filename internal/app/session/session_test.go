package session

import (
	"PromptCraft/internal/config"
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func stubConfig() *config.Config {
	cfg := config.Defaults()
	cfg.LLM.Provider = "stub"
	return cfg
}

func TestNewMinimal(t *testing.T) {
	s, err := New(stubConfig(), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	st := s.Engine.State()
	if st.CanSpeak || st.CanListen {
		t.Errorf("no capabilities configured, got %+v", st)
	}
	if s.History != nil {
		t.Error("history must be off by default")
	}
	if err := s.Engine.Synthesize(context.Background(), "idea", st.DetailLevel); err != nil {
		t.Errorf("stub synthesize: %v", err)
	}
}

func TestNewWithCapabilities(t *testing.T) {
	cfg := stubConfig()
	cfg.DetailLevel = "detailed"
	cfg.TTSService = "yandex"
	cfg.YandexTTS.APIKey = "k"
	cfg.STTService = "yandex"
	cfg.YandexSTT.APIKey = "k"
	cfg.YandexSTT.WAVPath = "input.wav"
	cfg.HistoryDB = filepath.Join(t.TempDir(), "h.db")

	s, err := New(cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	st := s.Engine.State()
	if !st.CanSpeak || !st.CanListen {
		t.Errorf("capabilities not wired: %+v", st)
	}
	if st.DetailLevel != "detailed" {
		t.Errorf("DetailLevel = %q", st.DetailLevel)
	}
	if s.History == nil {
		t.Fatal("history store must be opened")
	}
	if err := s.Engine.Synthesize(context.Background(), "idea", st.DetailLevel); err != nil {
		t.Fatal(err)
	}
	recs, err := s.History.List(context.Background(), 5)
	if err != nil || len(recs) != 1 {
		t.Errorf("history = %v, %v", recs, err)
	}
}

func TestNewUnknownServices(t *testing.T) {
	cfg := stubConfig()
	cfg.TTSService = "festival"
	if _, err := New(cfg, zap.NewNop().Sugar()); err == nil {
		t.Error("unknown tts service must fail")
	}
	cfg = stubConfig()
	cfg.STTService = "whisper"
	if _, err := New(cfg, zap.NewNop().Sugar()); err == nil {
		t.Error("unknown stt service must fail")
	}
}

package google

import (
	"PromptCraft/internal/config"
	"PromptCraft/internal/service/tts"
	"context"
	"strings"
	"time"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
)

// Client реализует синтез речи через Google Cloud Text-to-Speech.
type Client struct {
	cfg    config.GoogleTTSConfig
	logger *zap.SugaredLogger
}

func New(cfg config.GoogleTTSConfig, logger *zap.SugaredLogger) *Client {
	return &Client{cfg: cfg, logger: logger}
}

// Synthesize выполняет запрос к Google TTS и возвращает MP3.
func (c *Client) Synthesize(ctx context.Context, text string) (tts.Audio, error) {
	// Создаём клиента SDK (учётные данные из GOOGLE_APPLICATION_CREDENTIALS)
	ttsClient, err := gctts.NewClient(ctx)
	if err != nil {
		return tts.Audio{}, err
	}
	defer ttsClient.Close()

	req := &ttspb.SynthesizeSpeechRequest{
		Input:       buildInput(text, c.cfg.InputType),
		Voice:       &ttspb.VoiceSelectionParams{LanguageCode: c.cfg.Language, Name: c.cfg.Voice},
		AudioConfig: buildAudioConfig(c.cfg),
	}
	started := time.Now()
	resp, err := ttsClient.SynthesizeSpeech(ctx, req)
	if err != nil {
		return tts.Audio{}, err
	}
	c.logger.Infow("Google TTS synthesize completed", "took", time.Since(started).String())

	return tts.Audio{Data: resp.GetAudioContent(), Format: "mp3"}, nil
}

func buildInput(text, inputType string) *ttspb.SynthesisInput {
	if strings.EqualFold(strings.TrimSpace(inputType), "ssml") {
		return &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Ssml{Ssml: text}}
	}
	return &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: text}}
}

// Только MP3
func buildAudioConfig(cfg config.GoogleTTSConfig) *ttspb.AudioConfig {
	audio := &ttspb.AudioConfig{
		AudioEncoding: ttspb.AudioEncoding_MP3,
		SpeakingRate:  cfg.SpeakingRate,
		Pitch:         cfg.Pitch,
		VolumeGainDb:  cfg.VolumeGainDb,
	}
	if ep := strings.TrimSpace(cfg.EffectsProfileID); ep != "" {
		audio.EffectsProfileId = []string{ep}
	}
	return audio
}

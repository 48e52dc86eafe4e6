package gemini

import (
	"PromptCraft/internal/config"
	"PromptCraft/internal/service/tts"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

// По умолчанию используем Cloud TTS v1beta1 text:synthesize, совместимый с Generative AI TTS.
const defaultEndpoint = "https://texttospeech.googleapis.com/v1beta1/text:synthesize"

// Client реализует синтез речи через Cloud Text-to-Speech: Gemini‑TTS.
type Client struct {
	cfg    config.GeminiTTSConfig
	logger *zap.SugaredLogger
	// OAuth2 HTTP‑клиент только через ADC/metadata. API Key не используется.
	httpClient func(ctx context.Context) (*http.Client, error)
}

func New(cfg config.GeminiTTSConfig, logger *zap.SugaredLogger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		httpClient: func(ctx context.Context) (*http.Client, error) {
			return google.DefaultClient(ctx, "https://www.googleapis.com/auth/cloud-platform")
		},
	}
}

type requestPayload struct {
	Input struct {
		Prompt string `json:"prompt,omitempty"`
		Text   string `json:"text,omitempty"`
		Ssml   string `json:"ssml,omitempty"`
	} `json:"input"`
	Voice struct {
		ModelName    string `json:"modelName,omitempty"`
		LanguageCode string `json:"languageCode,omitempty"`
		VoiceName    string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding  string   `json:"audioEncoding,omitempty"`
		SpeakingRate   float64  `json:"speakingRate,omitempty"`
		Pitch          float64  `json:"pitch,omitempty"`
		VolumeGainDb   float64  `json:"volumeGainDb,omitempty"`
		EffectsProfile []string `json:"effectsProfileId,omitempty"`
	} `json:"audioConfig"`
}

type jsonAudioResponse struct {
	AudioContent string `json:"audioContent"`
}

func buildPayload(cfg config.GeminiTTSConfig, text string) requestPayload {
	var rp requestPayload
	if strings.EqualFold(strings.TrimSpace(cfg.InputType), "ssml") {
		rp.Input.Ssml = text
	} else {
		// text, prompt, пусто и неизвестные типы отправляем как text, чтобы избежать 400 INVALID_ARGUMENT
		rp.Input.Text = text
	}
	if p := strings.TrimSpace(cfg.Prompt); p != "" {
		rp.Input.Prompt = p
	}
	rp.Voice.ModelName = strings.TrimSpace(cfg.ModelName)
	rp.Voice.LanguageCode = strings.TrimSpace(cfg.Language)
	rp.Voice.VoiceName = strings.TrimSpace(cfg.VoiceName)
	rp.AudioConfig.AudioEncoding = "MP3"
	rp.AudioConfig.SpeakingRate = cfg.SpeakingRate
	rp.AudioConfig.Pitch = cfg.Pitch
	rp.AudioConfig.VolumeGainDb = cfg.VolumeGainDb
	if ep := strings.TrimSpace(cfg.EffectsProfileID); ep != "" {
		rp.AudioConfig.EffectsProfile = []string{ep}
	}
	return rp
}

// Synthesize выполняет запрос к Gemini‑TTS и возвращает MP3.
func (c *Client) Synthesize(ctx context.Context, text string) (tts.Audio, error) {
	if strings.TrimSpace(text) == "" {
		return tts.Audio{}, errors.New("gemini tts: empty input text")
	}
	rp := buildPayload(c.cfg, text)
	body, err := json.Marshal(&rp)
	if err != nil {
		return tts.Audio{}, err
	}

	endpoint := strings.TrimSpace(c.cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	hc, err := c.httpClient(ctx)
	if err != nil {
		return tts.Audio{}, errors.New("gemini tts: ADC credentials not found. Set GOOGLE_APPLICATION_CREDENTIALS to a service account JSON")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return tts.Audio{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return tts.Audio{}, err
	}
	defer resp.Body.Close()

	c.logger.Infow("Gemini TTS request completed", "status", resp.StatusCode, "took", time.Since(started).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return tts.Audio{}, fmt.Errorf("gemini tts error: status=%d, body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	// JSON с base64 полем audioContent
	var jr jsonAudioResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, 5<<20)) // до 5 МБ JSON
	if err := dec.Decode(&jr); err != nil {
		return tts.Audio{}, fmt.Errorf("gemini tts: decode json response: %w", err)
	}
	if strings.TrimSpace(jr.AudioContent) == "" {
		return tts.Audio{}, errors.New("gemini tts: empty audioContent in response")
	}
	data, err := base64.StdEncoding.DecodeString(jr.AudioContent)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("gemini tts: base64 decode: %w", err)
	}
	return tts.Audio{Data: data, Format: "mp3"}, nil
}

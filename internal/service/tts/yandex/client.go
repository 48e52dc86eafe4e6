package yandex

import (
	"PromptCraft/internal/config"
	"PromptCraft/internal/service/tts"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const endpoint = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"

// Ответ больше этого лимита считается ошибкой сервиса.
const maxAudioBytes = 20 << 20

// Client реализует синтез речи через Yandex SpeechKit.
type Client struct {
	http     *http.Client
	cfg      config.YandexTTSConfig
	endpoint string
}

func New(cfg config.YandexTTSConfig) *Client {
	return &Client{http: http.DefaultClient, cfg: cfg, endpoint: endpoint}
}

// Synthesize выполняет запрос к Yandex TTS и возвращает аудио в формате из конфигурации.
func (c *Client) Synthesize(ctx context.Context, text string) (tts.Audio, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return tts.Audio{}, errors.New("yandex tts: empty API key (set YC_TTS_API_KEY in .env/ENV)")
	}
	format := strings.ToLower(c.cfg.Format)

	form := url.Values{}
	form.Set("text", text)
	form.Set("voice", c.cfg.Voice)
	form.Set("format", format)
	form.Set("speed", c.cfg.Speed)
	form.Set("emotion", strings.ToLower(c.cfg.Emotion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return tts.Audio{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Api-Key "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return tts.Audio{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return tts.Audio{}, fmt.Errorf("yandex tts error: status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(b))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return tts.Audio{}, fmt.Errorf("yandex tts: read audio: %w", err)
	}
	return tts.Audio{Data: data, Format: format}, nil
}

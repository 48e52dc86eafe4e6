package yandex

import (
	"PromptCraft/internal/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultEndpoint = "wss://stt.api.cloud.yandex.net/speech/v1/stt:streaming"

// Result единица результата распознавания.
type Result struct {
	Text      string
	Final     bool
	Timestamp time.Time
}

// Client потоковое распознавание через WebSocket SpeechKit v1.
type Client struct {
	cfg     config.YandexSTTConfig
	conn    *websocket.Conn
	mu      sync.Mutex
	started bool

	// Закрывается, когда соединение завершено.
	results chan Result
}

// New создаёт клиент, без установления соединения.
func New(cfg config.YandexSTTConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.APIKey == "" {
		return nil, errors.New("yandex stt: пустой API key (ожидается YC_STT_API_KEY)")
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	return &Client{cfg: cfg, results: make(chan Result, 32)}, nil
}

// Start открывает WebSocket, отправляет стартовую конфигурацию и запускает приём сообщений.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("yandex stt: уже запущено")
	}

	u, err := c.streamURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 15 * time.Second,
	}
	header := http.Header{}
	header.Set("Authorization", "Api-Key "+c.cfg.APIKey)

	conn, resp, err := dialer.DialContext(ctx, u, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("yandex stt: не удалось подключиться к %s: %s (HTTP %d): %w", u, http.StatusText(resp.StatusCode), resp.StatusCode, err)
		}
		return fmt.Errorf("yandex stt: не удалось подключиться к %s: %w", u, err)
	}

	start, _ := json.Marshal(map[string]any{
		"lang":            c.cfg.Language,
		"format":          "lpcm",
		"sampleRateHertz": c.cfg.SampleRate,
		"topic":           "general",
		"partialResults":  false,
	})
	if err := conn.WriteMessage(websocket.TextMessage, start); err != nil {
		_ = conn.Close()
		return fmt.Errorf("yandex stt: не удалось отправить конфигурацию: %w", err)
	}

	c.conn = conn
	c.started = true
	go c.readLoop(conn)
	return nil
}

// streamURL добавляет к endpoint параметры, которые ожидает SpeechKit (lang, sampleRateHertz, topic, format).
func (c *Client) streamURL() (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("yandex stt: неверный endpoint: %w", err)
	}
	q := u.Query()
	q.Set("lang", c.cfg.Language)
	q.Set("sampleRateHertz", fmt.Sprint(c.cfg.SampleRate))
	if q.Get("topic") == "" {
		q.Set("topic", "general")
	}
	if q.Get("format") == "" {
		q.Set("format", "lpcm")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer close(c.results)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if res, ok := parseServerMessage(data); ok {
			c.results <- res
			if res.Final {
				// Нужен только первый финальный результат, остальное не читаем.
				return
			}
		}
	}
}

// parseServerMessage вытаскивает текст и признак финальности из ответа сервера.
// Поддерживаются несколько схем: {"result","final"}, {"alternatives":[{"text"}]}, {"partial"}, {"text","is_final"}.
func parseServerMessage(data []byte) (Result, bool) {
	var s1 struct {
		Result string `json:"result"`
		Final  bool   `json:"final"`
	}
	if json.Unmarshal(data, &s1) == nil && (s1.Result != "" || s1.Final) {
		return Result{Text: s1.Result, Final: s1.Final, Timestamp: time.Now()}, true
	}

	var s2 struct {
		Alternatives []struct {
			Text string `json:"text"`
		} `json:"alternatives"`
		Final bool `json:"final"`
	}
	if json.Unmarshal(data, &s2) == nil && len(s2.Alternatives) > 0 {
		return Result{Text: s2.Alternatives[0].Text, Final: s2.Final, Timestamp: time.Now()}, true
	}

	var s3 struct {
		Partial string `json:"partial"`
	}
	if json.Unmarshal(data, &s3) == nil && s3.Partial != "" {
		return Result{Text: s3.Partial, Timestamp: time.Now()}, true
	}

	var s4 struct {
		Text    string `json:"text"`
		IsFinal bool   `json:"is_final"`
		Final   bool   `json:"final"`
	}
	if json.Unmarshal(data, &s4) == nil && (s4.Text != "" || s4.IsFinal || s4.Final) {
		return Result{Text: s4.Text, Final: s4.IsFinal || s4.Final, Timestamp: time.Now()}, true
	}

	return Result{}, false
}

// WritePCM16 отправляет сэмплы PCM16 (mono, little-endian) бинарным фреймом.
func (c *Client) WritePCM16(samples []int16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started || c.conn == nil {
		return errors.New("yandex stt: соединение не установлено (Start не вызывался)")
	}
	b := make([]byte, 0, 2*len(samples))
	for _, s := range samples {
		b = append(b, byte(s), byte(s>>8))
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, b)
}

// Results канал с гипотезами. Закрывается после финального результата или разрыва соединения.
func (c *Client) Results() <-chan Result { return c.results }

// Close завершает стрим и закрывает соединение.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	c.started = false
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "eof"))
	return c.conn.Close()
}

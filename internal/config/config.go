package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFileName — имя YAML-файла конфигурации, который ищется в текущей и домашней директориях.
const DefaultFileName = ".promptcraft.yaml"

type Config struct {
	DebugMode   bool   `env:"DEBUG_MODE" yaml:"debug_mode"`     //Режим дебага
	LogFile     string `env:"LOG_FILE" yaml:"log_file"`         // Файл логов для TUI-режима (stdout занят интерфейсом)
	DetailLevel string `env:"DETAIL_LEVEL" yaml:"detail_level"` // Уровень подробности по умолчанию: small|medium|detailed

	LLM LLMConfig `yaml:"llm"`

	// Сколько держится флаг copied после копирования в буфер обмена
	CopiedResetDelay time.Duration `env:"COPIED_RESET_DELAY" yaml:"copied_reset_delay"`
	ClipboardEnabled bool          `env:"CLIPBOARD_ENABLED" yaml:"clipboard_enabled"`

	// Общий переключатель сервиса TTS и конфиги провайдеров
	TTSService string          `env:"TTS_SERVICE" yaml:"tts_service"` // none|google|yandex|gemini
	GoogleTTS  GoogleTTSConfig `yaml:"google_tts"`
	YandexTTS  YandexTTSConfig `yaml:"yandex_tts"`
	GeminiTTS  GeminiTTSConfig `yaml:"gemini_tts"`

	// STT: none|yandex
	STTService string          `env:"STT_SERVICE" yaml:"stt_service"`
	YandexSTT  YandexSTTConfig `yaml:"yandex_stt"`

	Server ServerConfig `yaml:"server"`

	HistoryDB             string `env:"HISTORY_DB" yaml:"history_db"`                           // Путь к SQLite с историей промптов; пусто — история выключена
	NotificationSoundPath string `env:"NOTIFICATION_SOUND_PATH" yaml:"notification_sound_path"` // Звук по готовности ответа; пусто — без звука
}

// LLMConfig параметры бэкенда генерации.
type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" yaml:"provider"` // openai|anthropic|stub
	Model    string `env:"LLM_MODEL" yaml:"model"`
	// Ключ API. Если пуст — берётся из OPENAI_API_KEY / ANTHROPIC_API_KEY в зависимости от провайдера.
	APIKey  string `env:"LLM_API_KEY" yaml:"api_key"`
	BaseURL string `env:"LLM_BASE_URL" yaml:"base_url"` // OpenAI-совместимый endpoint (Ollama, OpenRouter и т.п.)
	// Таймаут одного запроса; 0 — ограничение только транспортом
	Timeout   time.Duration `env:"LLM_TIMEOUT" yaml:"timeout"`
	MaxTokens int           `env:"LLM_MAX_TOKENS" yaml:"max_tokens"`
}

// YandexTTSConfig конфигурация для синтеза речи через Yandex SpeechKit.
type YandexTTSConfig struct {
	APIKey  string `env:"YC_TTS_API_KEY" yaml:"api_key"` // Ключ берём из .env/ENV. Если пуст — при использовании будет ошибка
	Voice   string `env:"YC_TTS_VOICE" yaml:"voice"`
	Format  string `env:"YC_TTS_FORMAT" yaml:"format"` // mp3|wav
	Speed   string `env:"YC_TTS_SPEED" yaml:"speed"`
	Emotion string `env:"YC_TTS_EMOTION" yaml:"emotion"` // neutral|good|evil
	Volume  int    `env:"YC_TTS_VOLUME" yaml:"volume"`   // Громкость 0-100; 100 — не изменять громкость
}

// GoogleTTSConfig конфигурация для синтеза речи через Google Cloud Text-to-Speech.
type GoogleTTSConfig struct {
	// Путь к файлу ключа сервисного аккаунта. Фактически читается из ENV GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsPath string  `env:"GOOGLE_APPLICATION_CREDENTIALS" yaml:"credentials_path"`
	Language        string  `env:"GOOGLE_TTS_LANGUAGE" yaml:"language"`
	Voice           string  `env:"GOOGLE_TTS_VOICE" yaml:"voice"`
	SpeakingRate    float64 `env:"GOOGLE_TTS_SPEAKING_RATE" yaml:"speaking_rate"`
	Pitch           float64 `env:"GOOGLE_TTS_PITCH" yaml:"pitch"`
	VolumeGainDb    float64 `env:"GOOGLE_TTS_VOLUME_DB" yaml:"volume_gain_db"`
	// Эффект профиля устройства воспроизведения, напр. headphone-class-device
	EffectsProfileID string `env:"GOOGLE_TTS_EFFECTS_PROFILE_ID" yaml:"effects_profile_id"`
	// Тип входа: text|ssml. Пусто — text.
	InputType string `env:"GOOGLE_TTS_INPUT_TYPE" yaml:"input_type"`
}

// GeminiTTSConfig конфигурация Cloud TTS с моделями Gemini (авторизация только через ADC).
type GeminiTTSConfig struct {
	Endpoint         string  `env:"GEMINI_TTS_ENDPOINT" yaml:"endpoint"`
	ModelName        string  `env:"GEMINI_TTS_MODEL" yaml:"model_name"`
	Language         string  `env:"GEMINI_TTS_LANGUAGE" yaml:"language"`
	VoiceName        string  `env:"GEMINI_TTS_VOICE" yaml:"voice_name"`
	Prompt           string  `env:"GEMINI_TTS_PROMPT" yaml:"prompt"` // Стилевая подсказка для голоса
	SpeakingRate     float64 `env:"GEMINI_TTS_SPEAKING_RATE" yaml:"speaking_rate"`
	Pitch            float64 `env:"GEMINI_TTS_PITCH" yaml:"pitch"`
	VolumeGainDb     float64 `env:"GEMINI_TTS_VOLUME_DB" yaml:"volume_gain_db"`
	EffectsProfileID string  `env:"GEMINI_TTS_EFFECTS_PROFILE_ID" yaml:"effects_profile_id"`
	InputType        string  `env:"GEMINI_TTS_INPUT_TYPE" yaml:"input_type"`
}

// YandexSTTConfig настройки потокового распознавания Yandex SpeechKit.
type YandexSTTConfig struct {
	Endpoint   string `env:"YC_STT_ENDPOINT" yaml:"endpoint"`
	APIKey     string `env:"YC_STT_API_KEY" yaml:"api_key"`
	Language   string `env:"STT_LANGUAGE" yaml:"language"` // Фиксированная локаль распознавания
	SampleRate int    `env:"YC_STT_SAMPLE_RATE" yaml:"sample_rate"`
	ChunkMS    int    `env:"YC_STT_CHUNK_MS" yaml:"chunk_ms"`
	// Источник звука: WAV (16 kHz mono PCM16), который стримится в псевдореалтайме
	WAVPath string `env:"STT_WAV_PATH" yaml:"wav_path"`
}

// ServerConfig конфигурация HTTP API.
type ServerConfig struct {
	BindAddr string `env:"SERVER_BIND_ADDR" yaml:"bind_addr"` // Адрес слушателя, напр. 127.0.0.1:8080
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются YAML-файлом, .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:   false,
		LogFile:     "promptcraft.log",
		DetailLevel: "medium",
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o",
			MaxTokens: 4096,
		},
		CopiedResetDelay: 2 * time.Second,
		ClipboardEnabled: true,
		// По умолчанию TTS/STT выключены: без ключей провайдера read aloud/listen вернут «не поддерживается»
		TTSService: "none",
		STTService: "none",
		YandexTTS: YandexTTSConfig{
			Voice:   "john",
			Format:  "mp3",
			Speed:   "1.0",
			Emotion: "neutral",
			Volume:  100,
		},
		GoogleTTS: GoogleTTSConfig{
			CredentialsPath:  "service-account.json",
			Language:         "en-US",
			Voice:            "en-US-Standard-C",
			SpeakingRate:     1.0,
			EffectsProfileID: "headphone-class-device",
		},
		GeminiTTS: GeminiTTSConfig{
			ModelName:    "gemini-2.5-flash-tts",
			Language:     "en-US",
			VoiceName:    "Kore",
			SpeakingRate: 1.0,
		},
		YandexSTT: YandexSTTConfig{
			Endpoint:   "wss://stt.api.cloud.yandex.net/speech/v1/stt:streaming",
			Language:   "en-US",
			SampleRate: 16000,
			ChunkMS:    50,
		},
		Server: ServerConfig{
			BindAddr: "127.0.0.1:8080",
		},
	}
}

// Load загружает конфигурацию: дефолты → YAML-файл → .env → окружение.
// path может быть пустым — тогда файл ищется в текущей директории, затем в домашней.
// Флаги CLI накладываются вызывающим поверх результата.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultFileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ErrMissingCredential — без ключа бэкенда приложение не стартует.
var ErrMissingCredential = errors.New("missing LLM API credential")

// APIKey возвращает ключ бэкенда: явный из конфига либо из стандартной переменной провайдера.
func (c *Config) APIKey() string {
	if k := strings.TrimSpace(c.LLM.APIKey); k != "" {
		return k
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "anthropic":
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	case "openai", "":
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	return ""
}

// Validate проверяет условия старта. Ошибка здесь фатальна для всего приложения.
func (c *Config) Validate() error {
	provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch provider {
	case "stub":
	case "openai", "anthropic":
		if c.APIKey() == "" {
			return fmt.Errorf("%w: set LLM_API_KEY or the provider variable for %s", ErrMissingCredential, provider)
		}
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}

	// Для Google TTS убеждаемся, что задан путь к cred-файлу и он существует.
	// Если ENV пуст, но в конфиге указан путь — устанавливаем ENV.
	if strings.EqualFold(c.TTSService, "google") {
		cred := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		if cred == "" {
			if cp := strings.TrimSpace(c.GoogleTTS.CredentialsPath); cp != "" {
				_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cp)
				cred = cp
			}
		}
		if cred == "" {
			return errors.New("google tts: GOOGLE_APPLICATION_CREDENTIALS is not set")
		}
		if _, err := os.Stat(cred); err != nil {
			return fmt.Errorf("google tts: credentials file not found: %s", cred)
		}
	}
	if strings.EqualFold(c.STTService, "yandex") && strings.TrimSpace(c.YandexSTT.WAVPath) == "" {
		return errors.New("yandex stt: STT_WAV_PATH is required as the audio source")
	}
	return nil
}

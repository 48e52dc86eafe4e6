package main

import (
	"PromptCraft/internal/app/session"
	"PromptCraft/internal/config"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

// Флаги поверх конфигурации; применяются, только если заданы явно.
var (
	configFile  string
	llmProvider string
	llmModel    string
	detailLevel string
	ttsService  string
	sttService  string
	historyDB   string
	debugMode   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "promptcraft",
		Short:   "Turn a rough idea into a structured LLM prompt",
		Version: version,
		// Без подкоманды запускается TUI.
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "Config file (default .promptcraft.yaml in cwd or home)")
	pf.StringVarP(&llmProvider, "provider", "p", "", "LLM provider: openai, anthropic, stub")
	pf.StringVarP(&llmModel, "model", "m", "", "LLM model")
	pf.StringVarP(&detailLevel, "level", "l", "", "Default detail level: small, medium, detailed")
	pf.StringVar(&ttsService, "tts", "", "Text-to-speech service: none, google, yandex, gemini")
	pf.StringVar(&sttService, "stt", "", "Speech-to-text service: none, yandex")
	pf.StringVar(&historyDB, "history-db", "", "SQLite file for prompt history (empty disables history)")
	pf.BoolVar(&debugMode, "debug", false, "Debug logging")

	rootCmd.AddCommand(tuiCmd, serveCmd, synthCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig дефолты → файл → .env → окружение → флаги.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("level") {
		cfg.DetailLevel = detailLevel
	}
	if flags.Changed("tts") {
		cfg.TTSService = ttsService
	}
	if flags.Changed("stt") {
		cfg.STTService = sttService
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB = historyDB
	}
	if flags.Changed("debug") {
		cfg.DebugMode = debugMode
	}
	return cfg, nil
}

// newLogger пишет в stderr, а при toFile — в cfg.LogFile (терминал занят интерфейсом).
func newLogger(cfg *config.Config, toFile bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if !cfg.DebugMode {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if toFile && cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	}
	return zc.Build()
}

// runtime то, что нужно подкомандам после старта.
type runtime struct {
	cfg     *config.Config
	session *session.Session
	logger  *zap.SugaredLogger
	close   func()
}

// startSession общий старт для tui/serve/synth: конфиг, логгер, проверка ключа, сборка контроллера.
func startSession(cmd *cobra.Command, logToFile bool) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, logToFile)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	sugar := logger.Sugar()
	// Sync на stderr у некоторых ОС возвращает EINVAL, его не логируем.
	syncLogger := func() { _ = logger.Sync() }

	if err := cfg.Validate(); err != nil {
		sugar.Errorw("Invalid configuration", "error", err)
		syncLogger()
		return nil, err
	}

	sugar.Infow("Starting app", "version", version, "DebugMode", cfg.DebugMode)
	s, err := session.New(cfg, sugar)
	if err != nil {
		sugar.Errorw("Failed to start session", "error", err)
		syncLogger()
		return nil, err
	}
	return &runtime{cfg: cfg, session: s, logger: sugar, close: func() {
		if err := s.Close(); err != nil {
			sugar.Warnw("Session close failed", "error", err)
		}
		syncLogger()
	}}, nil
}

package main

import (
	"PromptCraft/internal/app/session"
	"PromptCraft/internal/config"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// Утилита для проверки TTS: синтезирует текст выбранным в конфиге провайдером (TTS_SERVICE)
// и воспроизводит его либо сохраняет в файл.
func main() {
	var (
		text    string
		service string
		out     string
	)
	flag.StringVar(&text, "text", "Your prompt is ready.", "Текст для синтеза речи")
	flag.StringVar(&service, "service", "", "Провайдер: google|yandex|gemini (по умолчанию из TTS_SERVICE)")
	flag.StringVar(&out, "out", "", "Сохранить аудио в файл вместо воспроизведения")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load("")
	if err != nil {
		sugar.Fatalw("Failed to load config", "error", err)
	}
	if service != "" {
		cfg.TTSService = service
	}

	synth, ply, err := session.NewSynthesizer(cfg, sugar)
	if err != nil {
		sugar.Fatalw("Failed to init TTS", "error", err)
	}
	if synth == nil {
		fmt.Println("TTS выключен: задайте TTS_SERVICE или -service")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	audio, err := synth.Synthesize(ctx, strings.TrimSpace(text))
	if err != nil {
		sugar.Fatalw("Synthesis failed", "service", cfg.TTSService, "error", err)
	}
	sugar.Infow("Synthesized", "bytes", len(audio.Data), "format", audio.Format)

	if out != "" {
		if err := os.WriteFile(out, audio.Data, 0o644); err != nil {
			sugar.Fatalw("Failed to save audio", "path", out, "error", err)
		}
		fmt.Println("Сохранено:", out)
		return
	}
	if err := ply.Play(ctx, audio.Format, io.NopCloser(bytes.NewReader(audio.Data))); err != nil && ctx.Err() == nil {
		sugar.Fatalw("Playback failed", "error", err)
	}
}

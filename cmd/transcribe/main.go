package main

import (
	"PromptCraft/internal/config"
	"PromptCraft/internal/service/stt"
	"PromptCraft/internal/service/stt/audio"
	"PromptCraft/internal/service/stt/yandex"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Утилита для проверки распознавания: стримит WAV (16kHz mono PCM16) в Yandex STT
// в псевдореалтайме и печатает финальный результат.
func main() {
	var (
		wavPath string
		lang    string
		chunkMS int
	)
	flag.StringVar(&wavPath, "wav", "", "путь к WAV файлу (по умолчанию STT_WAV_PATH)")
	flag.StringVar(&lang, "lang", "", "язык распознавания (по умолчанию STT_LANGUAGE)")
	flag.IntVar(&chunkMS, "chunk-ms", 0, "длительность чанка в миллисекундах (20-100)")
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
	sc := cfg.YandexSTT
	if wavPath != "" {
		sc.WAVPath = wavPath
	}
	if lang != "" {
		sc.Language = lang
	}
	if chunkMS > 0 {
		sc.ChunkMS = chunkMS
	}
	if sc.WAVPath == "" {
		fmt.Println("укажите -wav или STT_WAV_PATH")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := yandex.NewRecognizer(sc, func() (stt.AudioSource, error) { return audio.OpenWAV(sc.WAVPath, sc.SampleRate) }, sugar)

	done := make(chan struct{})
	exitCode := 0
	h := stt.Handler{
		OnResult: func(text string) { fmt.Println(text) },
		OnError: func(code string) {
			sugar.Errorw("Recognition failed", "code", code)
			exitCode = 1
		},
		OnEnd: func() { close(done) },
	}
	if err := rec.Start(ctx, h); err != nil {
		sugar.Fatalw("Failed to start recognition", "code", stt.Code(err), "error", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		_ = rec.Stop()
	}
	_ = logger.Sync()
	os.Exit(exitCode)
}

package main

import (
	"PromptCraft/internal/config"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

// Небольшая утилита: печатает голоса Google TTS для языка, чтобы выбрать GOOGLE_TTS_VOICE / GEMINI_TTS_VOICE.
// Конфигурация берётся из internal/config (путь к cred-файлу сервисного аккаунта и язык).
func main() {
	lang := flag.String("lang", "", "language code, e.g. en-US (default from GOOGLE_TTS_LANGUAGE)")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Println("не удалось загрузить конфигурацию:", err)
		os.Exit(1)
	}
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" && cfg.GoogleTTS.CredentialsPath != "" {
		_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cfg.GoogleTTS.CredentialsPath)
	}

	code := *lang
	if code == "" {
		code = cfg.GoogleTTS.Language
	}
	if code == "" {
		code = "en-US"
	}

	ctx, cancel := context.WithTimeoutCause(context.Background(), 15*time.Second, errors.New("google tts voices request timeout"))
	defer cancel()

	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		fmt.Println("не удалось создать клиент Google TTS:", err)
		os.Exit(1)
	}
	defer client.Close()

	resp, err := client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{LanguageCode: code})
	if err != nil {
		fmt.Println("ошибка при запросе голосов:", err)
		os.Exit(1)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tGENDER\tRATE\tLANGUAGES")
	for _, v := range resp.GetVoices() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", v.GetName(), v.GetSsmlGender(), v.GetNaturalSampleRateHertz(), strings.Join(v.GetLanguageCodes(), ","))
	}
	_ = tw.Flush()
}

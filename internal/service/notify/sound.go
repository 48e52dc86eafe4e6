package notify

import (
	"PromptCraft/internal/service/tts/player"
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// SoundNotifier проигрывает короткий звук, когда ответ бэкенда готов.
type SoundNotifier struct {
	logger *zap.SugaredLogger
	path   string
	ply    player.Player
}

// NewSoundNotifier относительный путь сначала ищется рядом с бинарём, затем от рабочей директории.
func NewSoundNotifier(logger *zap.SugaredLogger, path string, ply player.Player) *SoundNotifier {
	return &SoundNotifier{logger: logger, path: resolve(path), ply: ply}
}

func resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if exe, err := os.Executable(); err == nil {
		cand := filepath.Join(filepath.Dir(exe), p)
		if _, statErr := os.Stat(cand); statErr == nil {
			return cand
		}
	}
	return p
}

// Notify проигрывает звук уведомления. Ошибки логируются и возвращаются вызывающему.
func (n *SoundNotifier) Notify(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}

	f, err := os.Open(n.path)
	if err != nil {
		n.logger.Warnw("Не удалось открыть звуковой файл уведомления", "path", n.path, "error", err)
		return err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(n.path), "."))
	if ext == "" {
		ext = "mp3"
	}
	// Play закрывает reader сам.
	if err := n.ply.Play(ctx, ext, f); err != nil {
		n.logger.Warnw("Не удалось воспроизвести звуковое уведомление", "path", n.path, "error", err)
		return err
	}
	return nil
}

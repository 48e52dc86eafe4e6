package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
)

// WAVSource отдаёт дорожку WAV-файла как PCM16. Файл читается в память целиком.
type WAVSource struct {
	samples    []int16
	pos        int
	sampleRate int
}

// OpenWAV открывает 16-bit mono WAV с частотой expectedSR (0 — любая).
func OpenWAV(path string, expectedSR int) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("wav: invalid or unsupported file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, errors.New("wav: empty buffer or missing format")
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("wav: mono required, got %d channels", buf.Format.NumChannels)
	}
	if expectedSR > 0 && buf.Format.SampleRate != expectedSR {
		return nil, fmt.Errorf("wav: %d Hz required, got %d Hz", expectedSR, buf.Format.SampleRate)
	}
	if buf.SourceBitDepth != 16 {
		return nil, fmt.Errorf("wav: 16-bit PCM required, got %d-bit", buf.SourceBitDepth)
	}
	return &WAVSource{samples: toInt16(buf.Data), sampleRate: buf.Format.SampleRate}, nil
}

func (s *WAVSource) ReadPCM16(buf []int16) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}
	n := copy(buf, s.samples[s.pos:])
	s.pos += n
	return n, nil
}

func (s *WAVSource) SampleRate() int { return s.sampleRate }

func (s *WAVSource) Close() error { return nil }

func toInt16(src []int) []int16 {
	dst := make([]int16, len(src))
	for i, v := range src {
		dst[i] = int16(max(-32768, min(32767, v)))
	}
	return dst
}

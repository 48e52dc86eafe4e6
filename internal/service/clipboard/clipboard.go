package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// Writer запись текста в системный буфер обмена.
type Writer interface {
	WriteText(text string) error
}

var ErrUnsupported = errors.New("clipboard: no clipboard utility available")

// System буфер обмена ОС (pbcopy, xclip/xsel/wl-copy, WinAPI).
type System struct{}

func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Available сообщает, есть ли в системе чем писать в буфер.
func Available() bool { return !clipboard.Unsupported }

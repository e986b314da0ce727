package qrcode

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// DefaultSize сторона изображения в пикселях
const DefaultSize = 256

const dataURLPrefix = "data:image/png;base64,"

// Encoder кодирует текст в PNG изображение QR кода
type Encoder interface {
	Encode(content string) ([]byte, error)
}

var _ Encoder = (*encoder)(nil)

type encoder struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewEncoder создает кодировщик с заданной стороной изображения
func NewEncoder(size int) Encoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &encoder{
		size:  size,
		level: qrcode.Medium,
	}
}

// Encode возвращает PNG
func (e *encoder) Encode(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, e.level, e.size)
	if err != nil {
		return nil, fmt.Errorf("qrcode.Encode: %w", err)
	}
	return png, nil
}

// DataURL упаковывает PNG в data URL
func DataURL(png []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

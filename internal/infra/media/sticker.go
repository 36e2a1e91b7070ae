package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"

	"wabridge/internal/domain/message"
	"wabridge/pkg/logger"
)

// Configurações de sticker exigidas pelo WhatsApp
const (
	StickerSize    = 512
	StickerQuality = 80
)

// StickerConverter converte imagens para o formato de sticker (WEBP 512x512)
type StickerConverter struct {
	logger logger.Logger
}

// NewStickerConverter cria uma nova instância do conversor
func NewStickerConverter(log logger.Logger) *StickerConverter {
	return &StickerConverter{
		logger: log.WithComponent("sticker-converter"),
	}
}

// Convert redimensiona e codifica a imagem como WEBP. Imagens já em WEBP
// são mantidas.
func (sc *StickerConverter) Convert(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty sticker data", message.ErrMediaFetchFailed)
	}

	if http.DetectContentType(data) == "image/webp" {
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: sticker is not a decodable image: %v", message.ErrMediaFetchFailed, err)
	}

	resized := resize.Resize(StickerSize, StickerSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resized, &webp.Options{Lossless: false, Quality: StickerQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode WEBP: %w", err)
	}

	sc.logger.WithFields(map[string]interface{}{
		"sourceFormat": format,
		"sourceSize":   len(data),
		"size":         buf.Len(),
	}).Debug().Msg("Sticker converted")

	return buf.Bytes(), nil
}

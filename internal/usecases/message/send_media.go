package message

import (
	"context"
	"fmt"
	"path"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/whatsapp"
	"wabridge/internal/infra/media"
	"wabridge/internal/infra/whatsapp/presence"
)

// MediaFetcher resolve a origem da mídia (upload, base64 ou URL)
type MediaFetcher interface {
	Fetch(ctx context.Context, kind whatsapp.MediaKind, src media.Source) (*media.Resolved, error)
}

// StickerConverter converte imagens em stickers WEBP
type StickerConverter interface {
	Convert(data []byte) ([]byte, error)
}

// SendMediaUseCase envia imagem, documento, áudio, vídeo ou sticker
type SendMediaUseCase struct {
	sender
	fetcher MediaFetcher
	sticker StickerConverter
}

// NewSendMediaUseCase cria uma nova instância do caso de uso
func NewSendMediaUseCase(deps Deps, fetcher MediaFetcher, sticker StickerConverter) *SendMediaUseCase {
	return &SendMediaUseCase{
		sender:  newSender(deps, "media"),
		fetcher: fetcher,
		sticker: sticker,
	}
}

// Execute obtém a mídia, simula presença (gravação para áudio) e envia
func (uc *SendMediaUseCase) Execute(ctx context.Context, req message.SendMediaRequest) (*message.SendMessageResponse, error) {
	if err := uc.checkReady(); err != nil {
		return nil, err
	}
	if err := uc.validate(req); err != nil {
		return nil, err
	}

	kind := whatsapp.MediaKind(req.Kind)
	if !kind.IsValid() {
		return nil, message.NewValidationError("type", fmt.Sprintf("unsupported media type %q", req.Kind))
	}
	if err := checkSingleSource(req); err != nil {
		return nil, err
	}

	resolved, err := uc.fetcher.Fetch(ctx, kind, media.Source{Upload: req.Upload, Data: req.Data, URL: req.URL})
	if err != nil {
		uc.Logger.WithError(err).WithField("kind", kind).Warn().Msg("Media fetch failed")
		uc.observe(err)
		return nil, err
	}

	data, mimeType := resolved.Data, resolved.MimeType
	if req.MimeType != "" && kind != whatsapp.MediaSticker {
		mimeType = req.MimeType
	}
	if kind == whatsapp.MediaSticker {
		if data, err = uc.sticker.Convert(data); err != nil {
			uc.observe(err)
			return nil, err
		}
		mimeType = "image/webp"
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = resolved.FileName
	}
	if fileName != "" {
		fileName = path.Base(fileName)
	} else if kind == whatsapp.MediaDocument {
		fileName = "document"
	}

	presenceKind := presence.KindTyping
	if kind == whatsapp.MediaAudio {
		presenceKind = presence.KindRecording
	}

	timing, err := uc.Simulator.Run(ctx, req.ConversationID, presenceKind, req.Caption, req.PresenceOptions)
	if err != nil {
		return nil, uc.sendError(err)
	}

	res, err := uc.Conn.SendMedia(ctx, req.ConversationID, whatsapp.Media{
		Kind:     kind,
		Data:     data,
		MimeType: mimeType,
		FileName: fileName,
		Caption:  req.Caption,
	})
	if err != nil {
		return nil, uc.sendError(err)
	}

	resp := uc.finish(ctx, res, req.Caption, timing)
	resp.Media = &message.MediaInfo{
		Kind:     string(kind),
		MimeType: mimeType,
		FileName: fileName,
		Size:     len(data),
	}
	return resp, nil
}

// checkSingleSource exige exatamente uma origem de mídia
func checkSingleSource(req message.SendMediaRequest) error {
	n := 0
	if len(req.Upload) > 0 {
		n++
	}
	if req.Data != "" {
		n++
	}
	if req.URL != "" {
		n++
	}
	switch n {
	case 0:
		return message.NewValidationError("url", "one of url, data or file upload is required")
	case 1:
		return nil
	}
	return message.NewValidationError("url", "only one of url, data or file upload may be given")
}

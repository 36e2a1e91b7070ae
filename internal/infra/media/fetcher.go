// Package media obtém e prepara mídias para envio.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/vincent-petithory/dataurl"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/logger"
)

const (
	DefaultMaxBytes     = 16 * 1024 * 1024
	DefaultFetchTimeout = 30 * time.Second
)

// Source é a origem da mídia; apenas um campo deve estar preenchido
type Source struct {
	Upload []byte
	Data   string
	URL    string
}

// Resolved é a mídia obtida com o tipo detectado
type Resolved struct {
	Data     []byte
	MimeType string
	FileName string
}

// Fetcher resolve mídias de upload, base64/data URL ou URL remota
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	logger     logger.Logger
}

// NewFetcher cria uma nova instância do Fetcher
func NewFetcher(maxBytes int64, timeout time.Duration, log logger.Logger) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
		logger:     log.WithComponent("media-fetcher"),
	}
}

// Fetch resolve a mídia e verifica se o tipo combina com kind.
// Todos os erros envolvem message.ErrMediaFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, kind whatsapp.MediaKind, src Source) (*Resolved, error) {
	var (
		res *Resolved
		err error
	)

	switch {
	case len(src.Upload) > 0:
		res = &Resolved{Data: src.Upload}
	case src.Data != "":
		res, err = f.decode(src.Data)
	case src.URL != "":
		res, err = f.download(ctx, src.URL)
	default:
		return nil, fmt.Errorf("%w: no media source provided", message.ErrMediaFetchFailed)
	}
	if err != nil {
		return nil, err
	}

	if len(res.Data) == 0 {
		return nil, fmt.Errorf("%w: media is empty", message.ErrMediaFetchFailed)
	}
	if int64(len(res.Data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: media size %d exceeds maximum %d bytes", message.ErrMediaFetchFailed, len(res.Data), f.maxBytes)
	}

	if res.MimeType == "" || res.MimeType == "application/octet-stream" {
		res.MimeType = http.DetectContentType(res.Data)
	}
	res.MimeType = baseMimeType(res.MimeType)

	if !Accepts(kind, res.MimeType) {
		return nil, fmt.Errorf("%w: %s is not a valid %s", message.ErrMediaFetchFailed, res.MimeType, kind)
	}
	return res, nil
}

// decode aceita data URL ("data:image/png;base64,...") ou base64 puro
func (f *Fetcher) decode(data string) (*Resolved, error) {
	if strings.HasPrefix(data, "data:") {
		du, err := dataurl.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: could not decode data URL: %v", message.ErrMediaFetchFailed, err)
		}
		return &Resolved{Data: du.Data, MimeType: du.ContentType()}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode base64 data: %v", message.ErrMediaFetchFailed, err)
	}
	return &Resolved{Data: raw}, nil
}

func (f *Fetcher) download(ctx context.Context, url string) (*Resolved, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid media URL: %v", message.ErrMediaFetchFailed, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.WithError(err).WithField("url", url).Warn().Msg("Failed to download media")
		return nil, fmt.Errorf("%w: %v", message.ErrMediaFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", message.ErrMediaFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read media: %v", message.ErrMediaFetchFailed, err)
	}

	return &Resolved{
		Data:     data,
		MimeType: resp.Header.Get("Content-Type"),
		FileName: path.Base(req.URL.Path),
	}, nil
}

// Accepts verifica se o MIME é aceito para o tipo de mídia
func Accepts(kind whatsapp.MediaKind, mimeType string) bool {
	switch kind {
	case whatsapp.MediaImage, whatsapp.MediaSticker:
		return strings.HasPrefix(mimeType, "image/")
	case whatsapp.MediaVideo:
		return strings.HasPrefix(mimeType, "video/")
	case whatsapp.MediaAudio:
		return strings.HasPrefix(mimeType, "audio/") || mimeType == "application/ogg"
	case whatsapp.MediaDocument:
		return true
	}
	return false
}

func baseMimeType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.TrimSpace(v)
	}
	return mt
}

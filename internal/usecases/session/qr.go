package session

import (
	"context"

	"wabridge/internal/infra/whatsapp/connection"
	"wabridge/pkg/logger"
)

// QRCodeSource fornece o QR pendente
type QRCodeSource interface {
	GetQRCodeData() (*connection.QRCodeData, error)
}

// QRCodeResponse representa a resposta do QR code
type QRCodeResponse struct {
	Code      string `json:"code"`
	Image     string `json:"image"`
	CreatedAt string `json:"created_at"`
}

// GetQRCodeUseCase implementa o caso de uso para obter o QR code atual
type GetQRCodeUseCase struct {
	source QRCodeSource
	logger logger.Logger
}

// NewGetQRCodeUseCase cria uma nova instância do caso de uso
func NewGetQRCodeUseCase(source QRCodeSource, logger logger.Logger) *GetQRCodeUseCase {
	return &GetQRCodeUseCase{
		source: source,
		logger: logger.WithComponent("get-qr-usecase"),
	}
}

// Execute retorna o QR pendente ou session.ErrQRCodeNotAvailable
func (uc *GetQRCodeUseCase) Execute(_ context.Context) (*QRCodeResponse, error) {
	data, err := uc.source.GetQRCodeData()
	if err != nil {
		uc.logger.Debug().Msg("No QR code pending")
		return nil, err
	}

	return &QRCodeResponse{
		Code:      data.Code,
		Image:     data.Image,
		CreatedAt: data.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

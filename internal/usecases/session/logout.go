package session

import (
	"context"

	"wabridge/pkg/logger"
)

// Logouter desloga o device atual
type Logouter interface {
	Logout(ctx context.Context) error
}

// LogoutResponse representa a resposta do logout
type LogoutResponse struct {
	Status string `json:"status"`
}

// LogoutUseCase desloga a sessão; um novo QR é emitido pelo caminho de reconexão
type LogoutUseCase struct {
	logouter Logouter
	logger   logger.Logger
}

// NewLogoutUseCase cria uma nova instância do caso de uso
func NewLogoutUseCase(logouter Logouter, logger logger.Logger) *LogoutUseCase {
	return &LogoutUseCase{
		logouter: logouter,
		logger:   logger.WithComponent("logout-usecase"),
	}
}

// Execute executa o logout
func (uc *LogoutUseCase) Execute(ctx context.Context) (*LogoutResponse, error) {
	uc.logger.Info().Msg("Logging out session")

	if err := uc.logouter.Logout(ctx); err != nil {
		uc.logger.WithError(err).Error().Msg("Failed to logout")
		return nil, err
	}

	uc.logger.Info().Msg("Session logged out")
	return &LogoutResponse{Status: "logged_out"}, nil
}

package connection

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/skip2/go-qrcode"

	"wabridge/internal/domain/session"
	"wabridge/pkg/logger"
)

// QRCodeData representa o desafio de pareamento atual
type QRCodeData struct {
	Code      string    `json:"code"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

// QRCodeManager mantém o QR atual em cache, já renderizado como PNG
type QRCodeManager struct {
	current  *QRCodeData
	mutex    sync.RWMutex
	logger   logger.Logger
	terminal io.Writer
	size     int
}

// NewQRCodeManager cria uma nova instância do QRCodeManager.
// Com showInTerminal o QR também é desenhado no stdout.
func NewQRCodeManager(showInTerminal bool, log logger.Logger) *QRCodeManager {
	qm := &QRCodeManager{
		logger: log.WithComponent("qr-manager"),
		size:   256,
	}
	if showInTerminal {
		qm.terminal = os.Stdout
	}
	return qm
}

// OnChange é registrado em Controller.Subscribe
func (qm *QRCodeManager) OnChange(change session.Change) {
	switch change.Event {
	case session.EventChallenge:
		if change.Snapshot.Challenge != nil {
			qm.handleQRCode(change.Snapshot.Challenge.Code, change.Snapshot.Challenge.IssuedAt)
		}
	case session.EventAuthenticated, session.EventReady, session.EventDisconnected, session.EventAuthFailure:
		if !change.Snapshot.HasChallenge() {
			qm.ClearQRCode()
		}
	}
}

// handleQRCode processa um novo QR code
func (qm *QRCodeManager) handleQRCode(code string, issuedAt time.Time) {
	image, err := qm.encodePNG(code)
	if err != nil {
		qm.logger.WithError(err).Error().Msg("Failed to encode QR code image")
	}

	qm.mutex.Lock()
	qm.current = &QRCodeData{Code: code, Image: image, CreatedAt: issuedAt}
	qm.mutex.Unlock()

	qm.logger.Info().Msg("QR code generated")

	if qm.terminal != nil {
		qm.displayQRCodeInTerminal(code)
	}
}

// encodePNG gera o data URL PNG do QR
func (qm *QRCodeManager) encodePNG(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, qm.size)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// GetQRCodeData retorna uma cópia do QR atual
func (qm *QRCodeManager) GetQRCodeData() (*QRCodeData, error) {
	qm.mutex.RLock()
	defer qm.mutex.RUnlock()

	if qm.current == nil {
		return nil, session.ErrQRCodeNotAvailable
	}
	dataCopy := *qm.current
	return &dataCopy, nil
}

// ClearQRCode remove o QR em cache
func (qm *QRCodeManager) ClearQRCode() {
	qm.mutex.Lock()
	cleared := qm.current != nil
	qm.current = nil
	qm.mutex.Unlock()

	if cleared {
		qm.logger.Debug().Msg("QR code cleared")
	}
}

// displayQRCodeInTerminal exibe o QR code no terminal
func (qm *QRCodeManager) displayQRCodeInTerminal(code string) {
	line := strings.Repeat("=", 50)
	fmt.Fprintln(qm.terminal, "\n"+line)
	fmt.Fprintln(qm.terminal, "Scan with WhatsApp: Settings > Linked devices > Link a device")
	fmt.Fprintln(qm.terminal, line)

	qrterminal.GenerateHalfBlock(code, qrterminal.L, qm.terminal)

	fmt.Fprintln(qm.terminal, line+"\n")
}

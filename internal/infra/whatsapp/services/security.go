package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/logger"
)

const signaturePrefix = "sha256="

// SecurityServiceImpl implementa o serviço de segurança
type SecurityServiceImpl struct {
	logger logger.Logger
}

// NewSecurityService cria uma nova instância do SecurityService
func NewSecurityService(log logger.Logger) whatsapp.SecurityService {
	return &SecurityServiceImpl{
		logger: log.WithComponent("security-service"),
	}
}

// GenerateSignature gera uma assinatura HMAC-SHA256 para webhook
func (ss *SecurityServiceImpl) GenerateSignature(data []byte, secret string) string {
	if secret == "" {
		ss.logger.Warn().Msg("Empty secret provided for signature generation")
		return ""
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)

	return signaturePrefix + hex.EncodeToString(h.Sum(nil))
}

// ValidateSignature valida uma assinatura de webhook
func (ss *SecurityServiceImpl) ValidateSignature(data []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		ss.logger.Warn().Msg("Empty secret or signature provided for validation")
		return false
	}
	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}

	expected := ss.GenerateSignature(data, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// SecretsEqual compara dois segredos em tempo constante
func (ss *SecurityServiceImpl) SecretsEqual(given, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}

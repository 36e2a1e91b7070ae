package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"wabridge/internal/domain/message"
	"wabridge/internal/http/responses"
	messageUseCases "wabridge/internal/usecases/message"
	"wabridge/pkg/logger"
)

// MessageHandler implementa os handlers de envio de mensagens
type MessageHandler struct {
	sendTextUseCase     *messageUseCases.SendTextUseCase
	sendReplyUseCase    *messageUseCases.SendReplyUseCase
	sendReactionUseCase *messageUseCases.SendReactionUseCase
	sendMediaUseCase    *messageUseCases.SendMediaUseCase
	sendLocationUseCase *messageUseCases.SendLocationUseCase
	sendContactUseCase  *messageUseCases.SendContactUseCase
	logger              logger.Logger
}

// NewMessageHandler cria uma nova instância do message handler
func NewMessageHandler(
	sendTextUseCase *messageUseCases.SendTextUseCase,
	sendReplyUseCase *messageUseCases.SendReplyUseCase,
	sendReactionUseCase *messageUseCases.SendReactionUseCase,
	sendMediaUseCase *messageUseCases.SendMediaUseCase,
	sendLocationUseCase *messageUseCases.SendLocationUseCase,
	sendContactUseCase *messageUseCases.SendContactUseCase,
	log logger.Logger,
) *MessageHandler {
	return &MessageHandler{
		sendTextUseCase:     sendTextUseCase,
		sendReplyUseCase:    sendReplyUseCase,
		sendReactionUseCase: sendReactionUseCase,
		sendMediaUseCase:    sendMediaUseCase,
		sendLocationUseCase: sendLocationUseCase,
		sendContactUseCase:  sendContactUseCase,
		logger:              log,
	}
}

func (h *MessageHandler) log(r *http.Request) logger.Logger {
	return requestLogger(r, h.logger, "message-handler")
}

// SendText envia uma mensagem de texto com simulação de digitação opcional
// @Summary Enviar mensagem de texto
// @Description Mostra "digitando" pela duração calculada (ou informada) e envia o texto
// @Tags Mensagens
// @Accept json
// @Produce json
// @Param request body message.SendTextRequest true "Dados da mensagem de texto"
// @Success 200 {object} responses.APIResponse "Mensagem enviada com sucesso"
// @Failure 400 {object} responses.APIResponse "Dados inválidos ou conversa indisponível"
// @Failure 503 {object} responses.APIResponse "Sessão não está pronta"
// @Router /messages/text [post]
// @Security ApiKeyAuth
func (h *MessageHandler) SendText(w http.ResponseWriter, r *http.Request) {
	var req message.SendTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r).WithError(err).Debug().Msg("Failed to decode send text request")
		responses.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	response, err := h.sendTextUseCase.Execute(r.Context(), req)
	if err != nil {
		logger.LogError(h.log(r), err, "send_text", map[string]interface{}{"conversation_id": req.ConversationID})
		responses.Error(w, err, responses.ScopeSend)
		return
	}

	responses.Success(w, "Mensagem de texto enviada com sucesso", response)
}

// SendReply responde uma mensagem conhecida
// @Summary Responder mensagem
// @Tags Mensagens
// @Accept json
// @Produce json
// @Param request body message.SendReplyRequest true "Mensagem original e texto da resposta"
// @Success 200 {object} responses.APIResponse
// @Failure 404 {object} responses.APIResponse "Mensagem original não encontrada"
// @Failure 503 {object} responses.APIResponse
// @Router /messages/reply [post]
// @Security ApiKeyAuth
func (h *MessageHandler) SendReply(w http.ResponseWriter, r *http.Request) {
	var req message.SendReplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		responses.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	response, err := h.sendReplyUseCase.Execute(r.Context(), req)
	if err != nil {
		logger.LogError(h.log(r), err, "send_reply", map[string]interface{}{"message_id": req.MessageID})
		responses.Error(w, err, responses.ScopeLookup)
		return
	}

	responses.Success(w, "Resposta enviada com sucesso", response)
}

// SendReaction reage a uma mensagem conhecida
// @Summary Reagir a mensagem
// @Tags Mensagens
// @Accept json
// @Produce json
// @Param request body message.SendReactionRequest true "Mensagem alvo e emoji"
// @Success 200 {object} responses.APIResponse
// @Failure 404 {object} responses.APIResponse "Mensagem não encontrada"
// @Router /messages/reaction [post]
// @Security ApiKeyAuth
func (h *MessageHandler) SendReaction(w http.ResponseWriter, r *http.Request) {
	var req message.SendReactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		responses.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	response, err := h.sendReactionUseCase.Execute(r.Context(), req)
	if err != nil {
		logger.LogError(h.log(r), err, "send_reaction", map[string]interface{}{"message_id": req.MessageID})
		responses.Error(w, err, responses.ScopeLookup)
		return
	}

	responses.Success(w, "Reação enviada com sucesso", response)
}

// SendMedia envia mídia. Aceita JSON (url ou data) ou multipart com o
// arquivo no campo "file".
// @Summary Enviar mídia
// @Description Imagem, vídeo, áudio, documento ou sticker via URL, data URL/base64 ou upload multipart
// @Tags Mensagens
// @Accept json,mpfd
// @Produce json
// @Param request body message.SendMediaRequest false "Mídia em JSON"
// @Param file formData file false "Arquivo (multipart)"
// @Success 200 {object} responses.APIResponse
// @Failure 400 {object} responses.APIResponse "Falha ao obter a mídia"
// @Failure 503 {object} responses.APIResponse
// @Router /messages/media [post]
// @Security ApiKeyAuth
func (h *MessageHandler) SendMedia(w http.ResponseWriter, r *http.Request) {
	var (
		req message.SendMediaRequest
		err error
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req, err = h.parseFormDataMedia(w, r)
		if err != nil {
			h.log(r).WithError(err).Debug().Msg("Failed to parse form-data media request")
			responses.BadRequest(w, "Invalid form-data request", err.Error())
			return
		}
	} else if err = decodeJSON(w, r, &req); err != nil {
		responses.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	response, err := h.sendMediaUseCase.Execute(r.Context(), req)
	if err != nil {
		logger.LogError(h.log(r), err, "send_media", map[string]interface{}{
			"conversation_id": req.ConversationID,
			"kind":            req.Kind,
		})
		responses.Error(w, err, responses.ScopeSend)
		return
	}

	responses.Success(w, "Mídia enviada com sucesso", response)
}

// SendLocation envia uma localização
// @Summary Enviar localização
// @Tags Mensagens
// @Accept json
// @Produce json
// @Param request body message.SendLocationRequest true "Coordenadas"
// @Success 200 {object} responses.APIResponse
// @Failure 400 {object} responses.APIResponse
// @Router /messages/location [post]
// @Security ApiKeyAuth
func (h *MessageHandler) SendLocation(w http.ResponseWriter, r *http.Request) {
	var req message.SendLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		responses.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	response, err := h.sendLocationUseCase.Execute(r.Context(), req)
	if err != nil {
		logger.LogError(h.log(r), err, "send_location", map[string]interface{}{"conversation_id": req.ConversationID})
		responses.Error(w, err, responses.ScopeSend)
		return
	}

	responses.Success(w, "Localização enviada com sucesso", response)
}

// SendContact envia um cartão de contato
// @Summary Enviar contato
// @Tags Mensagens
// @Accept json
// @Produce json
// @Param request body message.SendContactRequest true "Nome e telefone do contato"
// @Success 200 {object} responses.APIResponse
// @Failure 400 {object} responses.APIResponse
// @Router /messages/contact [post]
// @Security ApiKeyAuth
func (h *MessageHandler) SendContact(w http.ResponseWriter, r *http.Request) {
	var req message.SendContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		responses.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	response, err := h.sendContactUseCase.Execute(r.Context(), req)
	if err != nil {
		logger.LogError(h.log(r), err, "send_contact", map[string]interface{}{"conversation_id": req.ConversationID})
		responses.Error(w, err, responses.ScopeSend)
		return
	}

	responses.Success(w, "Contato enviado com sucesso", response)
}

// parseFormDataMedia monta a requisição de mídia a partir de um upload multipart
func (h *MessageHandler) parseFormDataMedia(w http.ResponseWriter, r *http.Request) (message.SendMediaRequest, error) {
	var req message.SendMediaRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return req, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	req.ConversationID = r.FormValue("conversation_id")
	req.Kind = r.FormValue("type")
	req.Caption = r.FormValue("caption")
	req.FileName = r.FormValue("filename")
	req.MimeType = r.FormValue("mimetype")
	req.URL = r.FormValue("url")

	opts, err := parseFormPresence(r)
	if err != nil {
		return req, err
	}
	req.PresenceOptions = opts

	file, header, err := r.FormFile("file")
	if err != nil {
		if req.URL != "" {
			return req, nil
		}
		return req, fmt.Errorf("failed to get media file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, fmt.Errorf("failed to read file content: %w", err)
	}
	req.Upload = data

	if req.FileName == "" {
		req.FileName = header.Filename
	}
	if ct := header.Header.Get("Content-Type"); req.MimeType == "" && ct != "application/octet-stream" {
		req.MimeType = ct
	}

	return req, nil
}

// parseFormPresence lê as opções de simulação enviadas como campos do formulário
func parseFormPresence(r *http.Request) (message.PresenceOptions, error) {
	opts := message.PresenceOptions{
		MessageType: r.FormValue("message_type"),
		Complexity:  r.FormValue("complexity"),
		Urgency:     r.FormValue("urgency"),
	}

	if v := r.FormValue("enable_typing"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid enable_typing: %w", err)
		}
		opts.EnableTyping = &b
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{"typing_duration", &opts.TypingDuration},
		{"message_delay", &opts.MessageDelay},
	}
	for _, f := range ints {
		v := r.FormValue(f.field)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid %s: %w", f.field, err)
		}
		*f.dst = n
	}

	return opts, nil
}

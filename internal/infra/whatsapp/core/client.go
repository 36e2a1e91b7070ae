// Package core implementa a conexão WhatsApp sobre o whatsmeow.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waCommon"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"

	"wabridge/internal/domain/session"
	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/logger"
)

// ClientProvider entrega o cliente whatsmeow atual (pode mudar após um logout)
type ClientProvider interface {
	Client() *whatsmeow.Client
}

// Client implementa whatsapp.Connection
type Client struct {
	provider ClientProvider
	logger   logger.Logger
}

// NewClient cria uma nova instância do cliente
func NewClient(provider ClientProvider, log logger.Logger) *Client {
	return &Client{
		provider: provider,
		logger:   log.WithComponent("whatsapp-client"),
	}
}

var _ whatsapp.Connection = (*Client)(nil)

// SendText envia uma mensagem de texto
func (c *Client) SendText(ctx context.Context, conversationID, text string) (*whatsapp.SendResult, error) {
	msg := &waE2E.Message{
		Conversation: proto.String(text),
	}
	return c.send(ctx, conversationID, msg, "text")
}

// SendReply envia um texto citando a mensagem original
func (c *Client) SendReply(ctx context.Context, quoted whatsapp.MessageRef, text string) (*whatsapp.SendResult, error) {
	contextInfo := &waE2E.ContextInfo{
		StanzaID:      proto.String(quoted.ID),
		QuotedMessage: &waE2E.Message{Conversation: proto.String(quoted.Text)},
	}
	if quoted.SenderID != "" {
		contextInfo.Participant = proto.String(quoted.SenderID)
	}

	msg := &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text:        proto.String(text),
			ContextInfo: contextInfo,
		},
	}
	return c.send(ctx, quoted.ConversationID, msg, "reply")
}

// SendReaction reage a uma mensagem; emoji vazio ou "remove" remove a reação
func (c *Client) SendReaction(ctx context.Context, target whatsapp.MessageRef, emoji string) (*whatsapp.SendResult, error) {
	if emoji == "remove" {
		emoji = ""
	}

	key := &waCommon.MessageKey{
		RemoteJID: proto.String(target.ConversationID),
		FromMe:    proto.Bool(target.FromMe),
		ID:        proto.String(target.ID),
	}
	if !target.FromMe && target.SenderID != "" && target.SenderID != target.ConversationID {
		key.Participant = proto.String(target.SenderID)
	}

	msg := &waE2E.Message{
		ReactionMessage: &waE2E.ReactionMessage{
			Key:               key,
			Text:              proto.String(emoji),
			SenderTimestampMS: proto.Int64(time.Now().UnixMilli()),
		},
	}
	return c.send(ctx, target.ConversationID, msg, "reaction")
}

// SendMedia faz upload e envia uma mídia
func (c *Client) SendMedia(ctx context.Context, conversationID string, media whatsapp.Media) (*whatsapp.SendResult, error) {
	client, err := c.connectedClient()
	if err != nil {
		return nil, err
	}

	uploadType, err := uploadTypeFor(media.Kind)
	if err != nil {
		return nil, err
	}

	uploaded, err := client.Upload(ctx, media.Data, uploadType)
	if err != nil {
		c.logger.WithError(err).Error().Msg("Failed to upload media")
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	size := proto.Uint64(uint64(len(media.Data)))
	var msg *waE2E.Message

	switch media.Kind {
	case whatsapp.MediaImage:
		msg = &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
			Caption:       proto.String(media.Caption),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			Mimetype:      proto.String(media.MimeType),
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    size,
		}}
	case whatsapp.MediaDocument:
		msg = &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
			Caption:       proto.String(media.Caption),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			Mimetype:      proto.String(media.MimeType),
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    size,
			FileName:      proto.String(media.FileName),
			Title:         proto.String(media.FileName),
		}}
	case whatsapp.MediaAudio:
		msg = &waE2E.Message{AudioMessage: &waE2E.AudioMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			Mimetype:      proto.String(media.MimeType),
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    size,
		}}
	case whatsapp.MediaVideo:
		msg = &waE2E.Message{VideoMessage: &waE2E.VideoMessage{
			Caption:       proto.String(media.Caption),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			Mimetype:      proto.String(media.MimeType),
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    size,
		}}
	case whatsapp.MediaSticker:
		// stickers sobem como imagem mas vão como StickerMessage
		msg = &waE2E.Message{StickerMessage: &waE2E.StickerMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			Mimetype:      proto.String("image/webp"),
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    size,
		}}
	}

	return c.send(ctx, conversationID, msg, string(media.Kind))
}

// SendLocation envia uma localização
func (c *Client) SendLocation(ctx context.Context, conversationID string, location whatsapp.Location) (*whatsapp.SendResult, error) {
	msg := &waE2E.Message{
		LocationMessage: &waE2E.LocationMessage{
			DegreesLatitude:  proto.Float64(location.Latitude),
			DegreesLongitude: proto.Float64(location.Longitude),
			Name:             proto.String(location.Name),
			Address:          proto.String(location.Address),
		},
	}
	return c.send(ctx, conversationID, msg, "location")
}

// SendContact envia um cartão de contato (vCard)
func (c *Client) SendContact(ctx context.Context, conversationID string, contact whatsapp.Contact) (*whatsapp.SendResult, error) {
	phone := strings.TrimPrefix(contact.Phone, "+")
	vcard := fmt.Sprintf("BEGIN:VCARD\nVERSION:3.0\nFN:%s\nTEL;type=CELL;waid=%s:+%s\nEND:VCARD", contact.Name, phone, phone)

	msg := &waE2E.Message{
		ContactMessage: &waE2E.ContactMessage{
			DisplayName: proto.String(contact.Name),
			Vcard:       proto.String(vcard),
		},
	}
	return c.send(ctx, conversationID, msg, "contact")
}

// SendChatPresence envia o indicador de digitação/gravação/pausa
func (c *Client) SendChatPresence(ctx context.Context, conversationID string, state whatsapp.PresenceState) error {
	client, err := c.connectedClient()
	if err != nil {
		return err
	}

	jid, err := ParseJID(conversationID)
	if err != nil {
		return err
	}

	var (
		chatState types.ChatPresence      = types.ChatPresenceComposing
		media     types.ChatPresenceMedia = types.ChatPresenceMediaText
	)
	switch state {
	case whatsapp.PresenceRecording:
		media = types.ChatPresenceMediaAudio
	case whatsapp.PresencePaused:
		chatState = types.ChatPresencePaused
	}

	if err := client.SendChatPresence(ctx, jid, chatState, media); err != nil {
		return fmt.Errorf("failed to send chat presence: %w", err)
	}
	return nil
}

// Download baixa o anexo de uma mensagem recebida
func (c *Client) Download(ctx context.Context, msg whatsmeow.DownloadableMessage) ([]byte, error) {
	client, err := c.connectedClient()
	if err != nil {
		return nil, err
	}
	return client.Download(ctx, msg)
}

func (c *Client) send(ctx context.Context, conversationID string, msg *waE2E.Message, kind string) (*whatsapp.SendResult, error) {
	client, err := c.connectedClient()
	if err != nil {
		return nil, err
	}

	jid, err := ParseJID(conversationID)
	if err != nil {
		return nil, err
	}

	messageID := client.GenerateMessageID()
	resp, err := client.SendMessage(ctx, jid, msg, whatsmeow.SendRequestExtra{ID: messageID})
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"conversationId": jid.String(),
			"kind":           kind,
		}).Error().Msg("Failed to send message")
		return nil, fmt.Errorf("failed to send %s message: %w", kind, err)
	}

	if resp.ID != "" {
		messageID = resp.ID
	}

	c.logger.WithFields(map[string]interface{}{
		"conversationId": jid.String(),
		"messageId":      messageID,
		"kind":           kind,
	}).Info().Msg("Message sent successfully")

	return &whatsapp.SendResult{
		ID:             messageID,
		ConversationID: jid.String(),
		Timestamp:      resp.Timestamp,
	}, nil
}

func (c *Client) connectedClient() (*whatsmeow.Client, error) {
	client := c.provider.Client()
	if client == nil || !client.IsConnected() || !client.IsLoggedIn() {
		return nil, session.ErrNotConnected
	}
	return client, nil
}

func uploadTypeFor(kind whatsapp.MediaKind) (whatsmeow.MediaType, error) {
	switch kind {
	case whatsapp.MediaImage, whatsapp.MediaSticker:
		return whatsmeow.MediaImage, nil
	case whatsapp.MediaAudio:
		return whatsmeow.MediaAudio, nil
	case whatsapp.MediaVideo:
		return whatsmeow.MediaVideo, nil
	case whatsapp.MediaDocument:
		return whatsmeow.MediaDocument, nil
	}
	return "", fmt.Errorf("%w: %s", whatsapp.ErrUnsupportedMedia, kind)
}

package events

import (
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
)

// Tipos de mensagem encaminhados no campo "type" do webhook
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeDocument = "document"
	TypeSticker  = "sticker"
	TypeLocation = "location"
	TypeContact  = "contact"
	TypeReaction = "reaction"
	TypeUnknown  = "unknown"
)

// Content é o conteúdo extraído de uma mensagem recebida
type Content struct {
	Type     string
	Body     string
	QuotedID string

	// Media é nil quando a mensagem não tem anexo baixável
	Media    whatsmeow.DownloadableMessage
	MimeType string
	FileName string
	Size     uint64
}

// HasMedia indica se a mensagem carrega um anexo
func (c Content) HasMedia() bool {
	return c.Media != nil
}

// MapContent extrai tipo, texto, citação e anexo de uma mensagem
func MapContent(msg *waE2E.Message) Content {
	if msg == nil {
		return Content{Type: TypeUnknown}
	}

	switch {
	case msg.GetConversation() != "":
		return Content{Type: TypeText, Body: msg.GetConversation()}

	case msg.GetExtendedTextMessage() != nil:
		ext := msg.GetExtendedTextMessage()
		return Content{
			Type:     TypeText,
			Body:     ext.GetText(),
			QuotedID: ext.GetContextInfo().GetStanzaID(),
		}

	case msg.GetImageMessage() != nil:
		img := msg.GetImageMessage()
		return Content{
			Type:     TypeImage,
			Body:     img.GetCaption(),
			QuotedID: img.GetContextInfo().GetStanzaID(),
			Media:    img,
			MimeType: img.GetMimetype(),
			Size:     img.GetFileLength(),
		}

	case msg.GetVideoMessage() != nil:
		vid := msg.GetVideoMessage()
		return Content{
			Type:     TypeVideo,
			Body:     vid.GetCaption(),
			QuotedID: vid.GetContextInfo().GetStanzaID(),
			Media:    vid,
			MimeType: vid.GetMimetype(),
			Size:     vid.GetFileLength(),
		}

	case msg.GetAudioMessage() != nil:
		aud := msg.GetAudioMessage()
		return Content{
			Type:     TypeAudio,
			QuotedID: aud.GetContextInfo().GetStanzaID(),
			Media:    aud,
			MimeType: aud.GetMimetype(),
			Size:     aud.GetFileLength(),
		}

	case msg.GetDocumentMessage() != nil:
		doc := msg.GetDocumentMessage()
		return Content{
			Type:     TypeDocument,
			Body:     doc.GetCaption(),
			QuotedID: doc.GetContextInfo().GetStanzaID(),
			Media:    doc,
			MimeType: doc.GetMimetype(),
			FileName: doc.GetFileName(),
			Size:     doc.GetFileLength(),
		}

	case msg.GetStickerMessage() != nil:
		st := msg.GetStickerMessage()
		return Content{
			Type:     TypeSticker,
			QuotedID: st.GetContextInfo().GetStanzaID(),
			Media:    st,
			MimeType: st.GetMimetype(),
			Size:     st.GetFileLength(),
		}

	case msg.GetLocationMessage() != nil:
		loc := msg.GetLocationMessage()
		body := loc.GetName()
		if body == "" {
			body = loc.GetAddress()
		}
		return Content{Type: TypeLocation, Body: body}

	case msg.GetContactMessage() != nil:
		return Content{Type: TypeContact, Body: msg.GetContactMessage().GetDisplayName()}

	case msg.GetReactionMessage() != nil:
		react := msg.GetReactionMessage()
		return Content{
			Type:     TypeReaction,
			Body:     react.GetText(),
			QuotedID: react.GetKey().GetID(),
		}
	}

	return Content{Type: TypeUnknown}
}

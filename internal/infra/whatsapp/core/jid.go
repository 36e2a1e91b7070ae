package core

import (
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow/types"

	"wabridge/internal/domain/whatsapp"
)

// ParseJID converte um identificador de conversa em JID.
// Aceita número puro ("+55 11 99999-9999") ou JID completo ("x@g.us").
func ParseJID(arg string) (types.JID, error) {
	arg = strings.TrimSpace(arg)

	if !strings.ContainsRune(arg, '@') {
		user := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, arg)
		if len(user) < 6 {
			return types.JID{}, fmt.Errorf("%w: %w: %q", whatsapp.ErrConversationUnavailable, whatsapp.ErrInvalidJID, arg)
		}
		return types.NewJID(user, types.DefaultUserServer), nil
	}

	jid, err := types.ParseJID(arg)
	if err != nil {
		return types.JID{}, fmt.Errorf("%w: %w: %v", whatsapp.ErrConversationUnavailable, whatsapp.ErrInvalidJID, err)
	}
	if jid.User == "" || jid.Server == "" {
		return types.JID{}, fmt.Errorf("%w: %w: %q", whatsapp.ErrConversationUnavailable, whatsapp.ErrInvalidJID, arg)
	}
	return jid, nil
}

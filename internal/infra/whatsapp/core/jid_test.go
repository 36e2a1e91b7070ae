package core

import (
	"errors"
	"testing"

	"wabridge/internal/domain/whatsapp"
)

func TestParseJID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5511999999999", "5511999999999@s.whatsapp.net"},
		{"+55 (11) 99999-9999", "5511999999999@s.whatsapp.net"},
		{"5511999999999@s.whatsapp.net", "5511999999999@s.whatsapp.net"},
		{"120363025246125486@g.us", "120363025246125486@g.us"},
	}
	for _, tt := range tests {
		got, err := ParseJID(tt.in)
		if err != nil {
			t.Errorf("ParseJID(%q) error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseJID(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseJIDInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "123", "@s.whatsapp.net", "٥٥١١٩٩٩٩٩٩٩٩٩", "５５１１９９９９９"} {
		_, err := ParseJID(in)
		if !errors.Is(err, whatsapp.ErrConversationUnavailable) || !errors.Is(err, whatsapp.ErrInvalidJID) {
			t.Errorf("ParseJID(%q) err = %v, want invalid conversation", in, err)
		}
	}
}

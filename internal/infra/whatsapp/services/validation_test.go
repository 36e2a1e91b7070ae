package services

import (
	"errors"
	"testing"

	"wabridge/internal/domain/message"
)

func TestValidatorUsesJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Struct(message.SendTextRequest{Text: "oi"})
	var ve *message.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Struct() error = %v, want ValidationError", err)
	}
	if ve.Field != "conversation_id" {
		t.Fatalf("Field = %q, want conversation_id", ve.Field)
	}
}

func TestValidatorEmbeddedPresenceOptions(t *testing.T) {
	v := NewValidator()

	req := message.SendTextRequest{ConversationID: "5511999999999", Text: "oi"}
	req.Complexity = "extreme"

	err := v.Struct(req)
	var ve *message.ValidationError
	if !errors.As(err, &ve) || ve.Field != "complexity" {
		t.Fatalf("Struct() error = %v, want complexity error", err)
	}

	req.Complexity = "high"
	if err := v.Struct(req); err != nil {
		t.Fatalf("Struct() error = %v, want nil", err)
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCodeMatching(t *testing.T) {
	err := New(CodeNotMember)

	if !IsCode(err, CodeNotMember) {
		t.Fatal("expected code to match")
	}
	if IsCode(err, CodeAlreadyMember) {
		t.Fatal("expected code mismatch")
	}
	if !stderrors.Is(err, New(CodeNotMember)) {
		t.Fatal("expected errors.Is to match by code")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(CodeProviderUnavailable, cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if GetCode(err) != CodeProviderUnavailable {
		t.Fatalf("expected provider code, got %s", GetCode(err))
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected cause in message, got %q", err.Error())
	}
}

func TestWrappedChainKeepsCode(t *testing.T) {
	err := fmt.Errorf("start game: %w", New(CodeRoundsExhausted))

	if GetCode(err) != CodeRoundsExhausted {
		t.Fatalf("expected code through wrap, got %s", GetCode(err))
	}
}

func TestWithMetaDoesNotMutateOriginal(t *testing.T) {
	base := New(CodeTemplateMissing)
	derived := base.WithMeta("Key", "bot.greeting")

	if len(base.Metadata) != 0 {
		t.Fatalf("expected original metadata untouched, got %v", base.Metadata)
	}
	if derived.Metadata["Key"] != "bot.greeting" {
		t.Fatalf("expected derived metadata, got %v", derived.Metadata)
	}
}

func TestUserMessageLocales(t *testing.T) {
	err := New(CodeUnknownUser)

	enMsg, ok := UserMessage(err, "en-US")
	if !ok || enMsg == "" {
		t.Fatal("expected en-US message")
	}
	ruMsg, ok := UserMessage(err, "ru-RU")
	if !ok || ruMsg == "" {
		t.Fatal("expected ru-RU message")
	}
	if enMsg == ruMsg {
		t.Fatal("expected locale-specific messages to differ")
	}

	fallback, ok := UserMessage(err, "pt-BR")
	if !ok || fallback != enMsg {
		t.Fatalf("expected en-US fallback, got %q", fallback)
	}
}

func TestUserMessageMetadataSubstitution(t *testing.T) {
	err := New(CodeTemplateMissing).WithMeta("Key", "bot.greeting")

	msg, ok := UserMessage(err, "en-US")
	if !ok {
		t.Fatal("expected a message")
	}
	if !strings.Contains(msg, "bot.greeting") {
		t.Fatalf("expected metadata substitution, got %q", msg)
	}
}

func TestUserMessageNonDomainError(t *testing.T) {
	if _, ok := UserMessage(stderrors.New("boom"), "en-US"); ok {
		t.Fatal("expected non-domain errors to be unsurfaced")
	}
}

func TestSeverityClasses(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeAlreadyMember, SeverityRejected},
		{CodeRoundsExhausted, SeverityRejected},
		{CodeCorrelationNotFound, SeverityLookupMiss},
		{CodeRoomNotFound, SeverityLookupMiss},
		{CodeProviderUnavailable, SeverityCollaborator},
		{CodeTemplateMissing, SeverityCollaborator},
	}

	for _, tt := range tests {
		if got := tt.code.Severity(); got != tt.want {
			t.Fatalf("severity of %s: got %v, want %v", tt.code, got, tt.want)
		}
	}
}

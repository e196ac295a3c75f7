package otel

import (
	"context"
	"testing"
)

func TestSetupDisabledByFlag(t *testing.T) {
	t.Setenv("FICTIONARY_OTEL_ENABLED", "false")
	t.Setenv("FICTIONARY_OTEL_ENDPOINT", "http://localhost:4318")

	shutdown, err := Setup(context.Background(), "fictionary-test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("FICTIONARY_OTEL_ENABLED", "")
	t.Setenv("FICTIONARY_OTEL_ENDPOINT", "")

	shutdown, err := Setup(context.Background(), "fictionary-test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

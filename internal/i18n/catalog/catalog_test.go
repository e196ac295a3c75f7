package catalog

import (
	"strings"
	"testing"

	"github.com/louisbranch/fictionary/internal/errors"
)

func TestEmbeddedBundleLoads(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	for _, locale := range []string{"en-US", "ru-RU"} {
		if !bundle.HasLocale(locale) {
			t.Errorf("missing locale %s", locale)
		}
	}
}

func TestLocaleKeyParity(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}

	base := bundle.Keys(BaseLocale)
	if len(base) == 0 {
		t.Fatal("base locale has no keys")
	}
	for _, locale := range bundle.Locales() {
		keys := bundle.Keys(locale)
		if len(keys) != len(base) {
			t.Fatalf("locale %s has %d keys, base has %d", locale, len(keys), len(base))
		}
		for i, key := range keys {
			if key != base[i] {
				t.Fatalf("locale %s key mismatch: %s vs %s", locale, key, base[i])
			}
		}
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}

	value, ok := bundle.Message("pt-BR", "bot.greeting")
	if !ok {
		t.Fatal("expected base-locale fallback")
	}
	base, _ := bundle.Message(BaseLocale, "bot.greeting")
	if value != base {
		t.Fatalf("expected base message, got %q", value)
	}
}

func TestRendererSubstitutesParams(t *testing.T) {
	renderer := NewRenderer(Default(), "en-US")

	out, err := renderer.Render("bot.round.word", map[string]string{
		"Round": "2",
		"Word":  "petrichor",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Round 2") || !strings.Contains(out, "petrichor") {
		t.Fatalf("unexpected render output %q", out)
	}
}

func TestRendererMissingKey(t *testing.T) {
	renderer := NewRenderer(Default(), "en-US")

	_, err := renderer.Render("bot.nope", nil)
	if !errors.IsCode(err, errors.CodeTemplateMissing) {
		t.Fatalf("expected CodeTemplateMissing, got %v", err)
	}
	if errors.GetMetadata(err)["Key"] != "bot.nope" {
		t.Fatalf("expected key metadata, got %v", errors.GetMetadata(err))
	}
}

func TestRendererUnknownLocaleFallsBack(t *testing.T) {
	renderer := NewRenderer(Default(), "fr-FR")
	if renderer.Locale() != BaseLocale {
		t.Fatalf("expected fallback to %s, got %s", BaseLocale, renderer.Locale())
	}
}

func TestEveryKeyRendersInEveryLocale(t *testing.T) {
	bundle := Default()
	for _, locale := range bundle.Locales() {
		renderer := NewRenderer(bundle, locale)
		for _, key := range bundle.Keys(locale) {
			if _, err := renderer.Render(key, nil); err != nil {
				t.Errorf("locale %s key %s: %v", locale, key, err)
			}
		}
	}
}

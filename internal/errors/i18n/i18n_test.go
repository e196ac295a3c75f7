package i18n

import "testing"

func TestEveryCodeHasBothLocales(t *testing.T) {
	for code := range enUSCatalog.messages {
		if _, ok := ruRUCatalog.messages[code]; !ok {
			t.Errorf("code %s missing from ru-RU catalog", code)
		}
	}
	for code := range ruRUCatalog.messages {
		if _, ok := enUSCatalog.messages[code]; !ok {
			t.Errorf("code %s missing from en-US catalog", code)
		}
	}
}

func TestFormatUnknownCodeFallsBack(t *testing.T) {
	got := GetCatalog("en-US").Format("NO_SUCH_CODE", nil)
	if got != enUSCatalog.messages[CodeUnknown] {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}

package catalog

import (
	"strings"

	"github.com/louisbranch/fictionary/internal/errors"
)

// Renderer renders catalog templates for a fixed locale. Templates use
// {{.Name}} placeholders substituted from the params map.
type Renderer struct {
	bundle *Bundle
	locale string
}

// NewRenderer builds a renderer for the given locale. Unknown locales fall
// back to the base locale.
func NewRenderer(bundle *Bundle, locale string) *Renderer {
	if !bundle.HasLocale(locale) {
		locale = BaseLocale
	}
	return &Renderer{bundle: bundle, locale: locale}
}

// Locale returns the effective locale this renderer resolved to.
func (r *Renderer) Locale() string {
	return r.locale
}

// Render resolves key in the renderer's locale and substitutes params.
// A missing key fails with CodeTemplateMissing.
func (r *Renderer) Render(key string, params map[string]string) (string, error) {
	template, ok := r.bundle.Message(r.locale, key)
	if !ok {
		return "", errors.New(errors.CodeTemplateMissing).WithMeta("Key", key)
	}
	if len(params) == 0 {
		return template, nil
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{{."+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template), nil
}

// Package i18n provides localized user-facing messages for domain error
// codes.
package i18n

import "strings"

// Catalog holds error message templates for one locale.
type Catalog struct {
	locale   string
	messages map[string]string
}

// Locale returns the catalog's locale identifier.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for a code, substituting {{.Key}} placeholders
// from metadata. Unknown codes fall back to a generic message.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	template, ok := c.messages[code]
	if !ok {
		return c.messages[fallbackKey]
	}
	if len(metadata) == 0 {
		return template
	}
	pairs := make([]string, 0, len(metadata)*2)
	for key, value := range metadata {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

const fallbackKey = "UNKNOWN"

var catalogs = map[string]*Catalog{
	"en-US": enUSCatalog,
	"ru-RU": ruRUCatalog,
}

// GetCatalog returns the catalog for a locale, falling back to en-US.
func GetCatalog(locale string) *Catalog {
	if c, ok := catalogs[locale]; ok {
		return c
	}
	return enUSCatalog
}

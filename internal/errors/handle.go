package errors

import (
	"errors"

	"github.com/louisbranch/fictionary/internal/errors/i18n"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = "en-US"

// UserMessage formats a user-facing message for a domain error in the given
// locale, defaulting to en-US if the locale is empty. The boolean reports
// whether the error should be surfaced to the triggering user at all;
// lookup misses with no identifiable actor are dropped by the caller.
func UserMessage(err error, locale string) (string, bool) {
	if err == nil {
		return "", false
	}

	if locale == "" {
		locale = DefaultLocale
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		catalog := i18n.GetCatalog(locale)
		return catalog.Format(string(appErr.Code), appErr.Metadata), true
	}

	return "", false
}

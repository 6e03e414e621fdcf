package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/laurensbos/webstability-backend/internal/platform/logging"
)

// RedactHeaders converts an http.Header map into a slice of slog.Attr values
// suitable for structured logging. Headers whose lowercase name appears in
// [logging.SensitiveHeaders] are replaced with "[REDACTED]"; all others are
// included as-is. Multi-value headers are joined with a comma.
//
// The sensitive set lives in the logging package so this utility and the
// masq redaction layer cannot silently drift apart.
func RedactHeaders(headers http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(headers))
	for key, vals := range headers {
		if logging.SensitiveHeaders[strings.ToLower(key)] {
			attrs = append(attrs, slog.String(key, "[REDACTED]"))
		} else {
			attrs = append(attrs, slog.String(key, strings.Join(vals, ",")))
		}
	}
	return attrs
}

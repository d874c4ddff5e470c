package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxInlinePayload is the longest image-like string written to logs as is.
const MaxInlinePayload = 256

// payloadPreview is how many leading characters of a truncated payload are
// kept.
const payloadPreview = 16

var base64Body = regexp.MustCompile(`^[A-Za-z0-9+/\r\n]+={0,2}$`)

// payloadKeys are field-name fragments whose values are image payloads.
var payloadKeys = []string{"image", "mask", "base64", "b64", "payload"}

// IsPayloadField reports whether a field name usually carries image data.
func IsPayloadField(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range payloadKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// TruncatePayload shortens inline image data (data URIs and long base64
// runs) to a short preview plus the original length. Other strings are
// returned unchanged.
//
// Example:
//
//	TruncatePayload("data:image/png;base64,iVBORw0KGgo...")
//	// "data:image/png;base64,iVBORw0KGgoAAAAN…(48213 bytes)"
func TruncatePayload(s string) string {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			header := s[:i+len(";base64,")]
			body := s[len(header):]
			if len(body) <= payloadPreview {
				return s
			}
			return fmt.Sprintf("%s%s…(%d bytes)", header, body[:payloadPreview], len(body))
		}
	}
	if len(s) > MaxInlinePayload && base64Body.MatchString(s) {
		return fmt.Sprintf("%s…(%d bytes)", s[:payloadPreview], len(s))
	}
	return s
}

// filterValue truncates a value when either its shape or its key marks it
// as an image payload.
func filterValue(key, value string) string {
	if v := TruncatePayload(value); v != value {
		return v
	}
	if IsPayloadField(key) && len(value) > MaxInlinePayload {
		return fmt.Sprintf("%s…(%d bytes)", value[:payloadPreview], len(value))
	}
	return value
}

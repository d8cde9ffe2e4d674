package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Field keys whose values never appear in rendered log output.
var sensitiveKeys = map[string]struct{}{
	"token":         {},
	"secret":        {},
	"password":      {},
	"api_key":       {},
	"apikey":        {},
	"cookie":        {},
	"authorization": {},
	"proxy":         {},
}

// MaskValue redacts a sensitive value while leaving a recognizable stub:
// short values become "***", longer ones keep the first three and last two
// characters.
func MaskValue(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:3] + "***" + value[len(value)-2:]
}

func isSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// renderFields flattens zap fields into a "key=value" suffix for ring
// entries, masking sensitive values on the way.
func renderFields(base []zapcore.Field, fields []zapcore.Field) string {
	if len(base)+len(fields) == 0 {
		return ""
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range base {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	parts := make([]string, 0, len(enc.Fields))
	for _, f := range append(base, fields...) {
		value, ok := enc.Fields[f.Key]
		if !ok {
			continue
		}
		rendered := fmt.Sprintf("%v", value)
		if isSensitiveKey(f.Key) {
			rendered = MaskValue(rendered)
		}
		parts = append(parts, f.Key+"="+rendered)
	}
	return strings.Join(parts, " ")
}

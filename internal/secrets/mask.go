// Package secrets implements the console's secret-handling policy:
// secret material never reaches logs, traces, or rendered views in
// plaintext.
package secrets

import (
	"regexp"
)

const (
	// ValueMask replaces secret env var values. The mask is a constant
	// length so the rendered form leaks nothing about the real value.
	ValueMask = "••••••••••••••••"

	// FieldMask replaces sensitive fields inside execution payloads.
	FieldMask = "••••••••"
)

var sensitiveKey = regexp.MustCompile(`(?i)key|token|auth`)

// MaskValue returns the fixed mask for a secret value. The input is
// accepted only so call sites read naturally; it never influences the
// output.
func MaskValue(string) string {
	return ValueMask
}

// SensitiveKey reports whether a payload key must be masked before
// display.
func SensitiveKey(key string) bool {
	return sensitiveKey.MatchString(key)
}

// MaskPayload returns a deep copy of v with every value under a sensitive
// key replaced by FieldMask, at any nesting depth. Maps and slices are
// copied; scalars pass through untouched.
func MaskPayload(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			if SensitiveKey(k) {
				out[k] = FieldMask
				continue
			}
			out[k] = MaskPayload(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = MaskPayload(inner)
		}
		return out
	default:
		return v
	}
}

// MaskPayloadMap is MaskPayload specialized for the map payloads the
// domain model carries.
func MaskPayloadMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return MaskPayload(m).(map[string]any)
}

package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskValue(t *testing.T) {
	// The mask length never depends on the input.
	assert.Equal(t, ValueMask, MaskValue("x"))
	assert.Equal(t, ValueMask, MaskValue(strings.Repeat("a", 200)))
	assert.Equal(t, 16, strings.Count(ValueMask, "•"))
}

func TestSensitiveKey(t *testing.T) {
	sensitive := []string{"apiKey", "API_KEY", "token", "refreshToken", "Authorization", "auth_header", "x-auth"}
	for _, k := range sensitive {
		assert.True(t, SensitiveKey(k), "expected %q to be sensitive", k)
	}

	plain := []string{"name", "email", "url", "payload", "status"}
	for _, k := range plain {
		assert.False(t, SensitiveKey(k), "expected %q to be plain", k)
	}
}

func TestMaskPayload(t *testing.T) {
	t.Run("masks nested sensitive keys", func(t *testing.T) {
		payload := map[string]any{
			"customer": map[string]any{
				"name":   "Ada",
				"apiKey": "sk-live-1234",
			},
			"attempts": []any{
				map[string]any{"token": "abc", "status": 200},
			},
			"authorization": "Bearer xyz",
		}

		masked := MaskPayloadMap(payload)

		customer := masked["customer"].(map[string]any)
		assert.Equal(t, "Ada", customer["name"])
		assert.Equal(t, FieldMask, customer["apiKey"])

		attempt := masked["attempts"].([]any)[0].(map[string]any)
		assert.Equal(t, FieldMask, attempt["token"])
		assert.Equal(t, 200, attempt["status"])

		assert.Equal(t, FieldMask, masked["authorization"])
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		payload := map[string]any{
			"token": "abc",
			"inner": map[string]any{"auth": "xyz"},
		}

		_ = MaskPayloadMap(payload)

		assert.Equal(t, "abc", payload["token"])
		assert.Equal(t, "xyz", payload["inner"].(map[string]any)["auth"])
	})

	t.Run("nil map stays nil", func(t *testing.T) {
		assert.Nil(t, MaskPayloadMap(nil))
	})
}

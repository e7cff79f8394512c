package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	t.Run("substitutes known placeholders", func(t *testing.T) {
		tpl := `{"text": "Resolved for {{customer.name}}", "id": "{{conversation.id}}"}`
		vars := map[string]string{
			"customer.name":   "Ada Lovelace",
			"conversation.id": "conv-42",
		}

		rendered := RenderTemplate(tpl, vars)

		assert.Equal(t, `{"text": "Resolved for Ada Lovelace", "id": "conv-42"}`, rendered)
	})

	t.Run("leaves unknown placeholders intact", func(t *testing.T) {
		tpl := `{"data": {{payload}}}`

		rendered := RenderTemplate(tpl, map[string]string{})

		assert.Equal(t, `{"data": {{payload}}}`, rendered)
	})

	t.Run("tolerates whitespace inside braces", func(t *testing.T) {
		rendered := RenderTemplate("Hello {{ name }}", map[string]string{"name": "world"})

		assert.Equal(t, "Hello world", rendered)
	})

	t.Run("no placeholders passes through", func(t *testing.T) {
		tpl := `{"static": true}`

		assert.Equal(t, tpl, RenderTemplate(tpl, map[string]string{"name": "unused"}))
	})
}

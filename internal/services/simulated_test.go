package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexusai/console/pkg/models"
)

func TestSimulatedConnectionTester(t *testing.T) {
	tester := &SimulatedConnectionTester{}

	status, err := tester.Test(context.Background(), &models.Credential{Alias: "Drive Prod"})

	assert.NoError(t, err)
	assert.Equal(t, models.StatusConnected, status)
}

func TestSimulatedRouteDispatcher(t *testing.T) {
	dispatcher := &SimulatedRouteDispatcher{}

	route := &models.OutputRoute{
		URL:          "https://hooks.example.com/ingest",
		Method:       models.MethodPost,
		BodyTemplate: `{"text": "Resolved for {{customer.name}}"}`,
	}

	t.Run("renders the template into the recorded payload", func(t *testing.T) {
		result, err := dispatcher.Dispatch(context.Background(), route, map[string]string{
			"customer.name": "Ada",
		})

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Status)
		assert.Equal(t, "Resolved for Ada", result.Payload["text"])
		assert.Equal(t, true, result.Response["simulated"])
		assert.Equal(t, route.URL, result.Response["receiver"])
		assert.Regexp(t, `^\d+\.\ds$`, result.Duration)
	})

	t.Run("keeps a non-JSON rendering as raw text", func(t *testing.T) {
		broken := &models.OutputRoute{
			URL:          route.URL,
			BodyTemplate: `not json at all`,
		}

		result, err := dispatcher.Dispatch(context.Background(), broken, nil)

		assert.NoError(t, err)
		assert.Equal(t, "not json at all", result.Payload["raw"])
	})

	t.Run("honors context cancellation while delayed", func(t *testing.T) {
		slow := &SimulatedRouteDispatcher{Delay: 1_000_000_000}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := slow.Dispatch(ctx, route, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/nexusai/console/pkg/models"
)

// SimulatedConnectionTester flips a credential toward connected without
// performing a real handshake. It exists because the product has no
// provider handshake yet; swap in a real tester behind ConnectionTester
// when one lands.
type SimulatedConnectionTester struct {
	// Delay approximates a remote round trip. Zero in tests.
	Delay time.Duration
}

// Test reports the credential as connected after the configured delay.
func (s *SimulatedConnectionTester) Test(ctx context.Context, cred *models.Credential) (models.CredentialStatus, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return models.StatusError, ctx.Err()
		}
	}
	return models.StatusConnected, nil
}

// SimulatedRouteDispatcher fabricates a successful send through an output
// route: it renders the body template and invents a 200 response. No
// network traffic happens here.
type SimulatedRouteDispatcher struct {
	Delay time.Duration
}

// Dispatch renders the route's body template against vars and returns a
// fabricated execution outcome. The response body is labeled as simulated
// so a reader of the history cannot mistake it for a real delivery.
func (s *SimulatedRouteDispatcher) Dispatch(ctx context.Context, route *models.OutputRoute, vars map[string]string) (*DispatchResult, error) {
	start := time.Now()
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	rendered := RenderTemplate(route.BodyTemplate, vars)

	payload := map[string]any{}
	if err := json.Unmarshal([]byte(rendered), &payload); err != nil {
		// A template that does not render to valid JSON is still worth
		// recording; keep the raw text for the operator.
		payload = map[string]any{"raw": rendered}
	}

	duration := time.Since(start)
	if s.Delay == 0 {
		duration = time.Duration(200+rand.Intn(800)) * time.Millisecond
	}

	return &DispatchResult{
		Status:  http.StatusOK,
		Payload: payload,
		Response: map[string]any{
			"ok":        true,
			"simulated": true,
			"receiver":  route.URL,
		},
		Duration: fmt.Sprintf("%.1fs", duration.Seconds()),
	}, nil
}

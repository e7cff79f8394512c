package services

import (
	"context"

	"github.com/nexusai/console/pkg/models"
)

// TransformRequest is the material the generative transformer receives:
// everything is freeform text or JSON documents, and the answer is an
// opaque JSON string parsed only for display.
type TransformRequest struct {
	CRMType         models.CRMType
	IngestionSchema map[string]any
	OutputSchema    map[string]any
	SourceJSON      string
	Instructions    string
}

// Transformer is the single generative-model capability the console uses.
type Transformer interface {
	TransformPreview(ctx context.Context, req TransformRequest) (string, error)
}

// ConnectionTester probes whether a credential can reach its provider.
// The default implementation is a simulation; a real handshake slots in
// behind this interface without touching the store.
type ConnectionTester interface {
	Test(ctx context.Context, cred *models.Credential) (models.CredentialStatus, error)
}

// DispatchResult is the outcome of sending a payload through an output
// route.
type DispatchResult struct {
	Status   int
	Payload  map[string]any
	Response map[string]any
	Duration string
}

// RouteDispatcher sends a rendered payload through an output route. The
// default implementation simulates the send; it never performs real I/O.
type RouteDispatcher interface {
	Dispatch(ctx context.Context, route *models.OutputRoute, vars map[string]string) (*DispatchResult, error)
}

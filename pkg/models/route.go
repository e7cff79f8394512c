package models

// ExecutionHistoryCap bounds the per-route execution history. Appends
// beyond the cap drop the oldest entry.
const ExecutionHistoryCap = 10

// HTTPMethod is the verb an output route uses.
type HTTPMethod string

const (
	MethodPost HTTPMethod = "POST"
	MethodPut  HTTPMethod = "PUT"
	MethodGet  HTTPMethod = "GET"
)

// Header is one key/value pair sent with an output route's request.
type Header struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OutputExecution is an immutable record of one send through a route,
// kept most-recent-first and capped at ExecutionHistoryCap.
type OutputExecution struct {
	ID        string         `json:"id"`
	RouteID   string         `json:"routeId"`
	Timestamp string         `json:"timestamp"`
	Status    int            `json:"status"`
	Payload   map[string]any `json:"payload,omitempty"`
	Response  map[string]any `json:"response,omitempty"`
	Duration  string         `json:"duration"`
}

// OutputRoute is a tenant-owned webhook destination. BodyTemplate may
// contain {{variable}} placeholders resolved at dispatch time.
type OutputRoute struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenantId"`
	Name         string             `json:"name"`
	URL          string             `json:"url"`
	Method       HTTPMethod         `json:"method"`
	BodyTemplate string             `json:"bodyTemplate"`
	Group        string             `json:"group,omitempty"`
	IsActive     bool               `json:"isActive"`
	Headers      []*Header          `json:"headers"`
	History      []*OutputExecution `json:"history"`
}

// Clone returns a deep copy of the route, its headers, and its history.
// Execution payload maps are shared; executions are immutable once
// recorded.
func (r *OutputRoute) Clone() *OutputRoute {
	if r == nil {
		return nil
	}
	out := *r
	out.Headers = make([]*Header, len(r.Headers))
	for i, h := range r.Headers {
		hh := *h
		out.Headers[i] = &hh
	}
	out.History = make([]*OutputExecution, len(r.History))
	for i, e := range r.History {
		ee := *e
		out.History[i] = &ee
	}
	return &out
}

